package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ClientController manages the partner integrations allowed to call /oauth/token
type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

type createClientRequest struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Register a partner integration using the client_credentials grant. The secret is returned once.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body createClientRequest true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Client name is required", err)
		return
	}

	client, secret, err := cc.clientService.CreateClient(c.GetUint("userID"), services.NewClient{
		Name:   req.Name,
		Domain: req.Domain,
		Scopes: req.Scopes,
	})
	if err != nil {
		respondError(c, err, "Client creation failed")
		return
	}

	respond(c, http.StatusCreated, "Client created", gin.H{
		"client_id":     client.ID,
		"client_secret": secret,
		"name":          client.Name,
		"scopes":        client.Scopes,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated admin
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.GetUint("userID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve clients")
		return
	}

	views := make([]gin.H, 0, len(clients))
	for _, client := range clients {
		views = append(views, gin.H{
			"client_id":  client.ID,
			"name":       client.Name,
			"domain":     client.Domain,
			"scopes":     client.Scopes,
			"created_at": client.CreatedAt,
		})
	}
	respond(c, http.StatusOK, "", gin.H{"clients": views})
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Tags OAuth2 Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Param("id"), c.GetUint("userID")); err != nil {
		respondError(c, err, "Failed to delete client")
		return
	}
	respond(c, http.StatusOK, "Client deleted", nil)
}

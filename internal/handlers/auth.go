package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// operatorCredentials is the body of both operator auth routes.
type operatorCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const errBadCredentials = "invalid credentials"

// @Summary      Register operator
// @Description  Creates an operator account allowed to change settings and clear the log.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var cred operatorCredentials
	if !h.bindBody(c, &cred) {
		return
	}
	id, err := h.services.SignUp(cred.Username, cred.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("operator_register_rejected", "username", cred.Username, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.log != nil {
		h.log.Infow("operator_registered", "id", id, "username", cred.Username)
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Sign in
// @Description  Returns a bearer token for the control routes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var cred operatorCredentials
	if !h.bindBody(c, &cred) {
		return
	}
	token, err := h.services.GenerateToken(cred.Username, cred.Password)
	if err != nil {
		if h.log != nil {
			h.log.Infow("operator_sign_in_rejected", "username", cred.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": errBadCredentials})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

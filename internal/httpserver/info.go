package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_api/internal/config"
)

const welcomeMessage = "Bem-vindo à nossa API Spring Boot de Exemplo!"

type InfoHTTP struct {
	App config.App
	DB  config.DBInfo
}

type dbInfoResponse struct {
	Host string `json:"host"`
	Port string `json:"port"`
}

type infoResponse struct {
	Ambiente       string         `json:"ambiente"`
	Mensagem       string         `json:"mensagem"`
	ConfiguracaoDB dbInfoResponse `json:"configuracao_db"`
}

func (h *InfoHTTP) Welcome(c echo.Context) error {
	return c.String(http.StatusOK, welcomeMessage)
}

func (h *InfoHTTP) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, infoResponse{
		Ambiente: h.App.Environment,
		Mensagem: h.App.CustomMessage,
		ConfiguracaoDB: dbInfoResponse{
			Host: h.DB.Host,
			Port: h.DB.Port,
		},
	})
}

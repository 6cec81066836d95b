package clients

import (
	"fmt"
	"net/http"
	"time"

	"inventory/lib/models"

	"github.com/studio-b12/gowebdav"
)

// NewWebDAVClient creates an authenticated client for the configured server
func NewWebDAVClient(settings *models.WebDAVConfig) *gowebdav.Client {
	client := gowebdav.NewClient(settings.URL, settings.Username, settings.Password)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "inventory-sync")
	return client
}

// CheckWebDAVConnection verifies the credentials against the server root
func CheckWebDAVConnection(client *gowebdav.Client) error {
	if err := client.Connect(); err != nil {
		if gowebdav.IsErrCode(err, http.StatusUnauthorized) {
			return fmt.Errorf("webdav credentials rejected: %w", err)
		}
		return fmt.Errorf("failed to connect to webdav server: %w", err)
	}
	return nil
}

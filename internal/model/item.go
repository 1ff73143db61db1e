package model

import "time"

// HomeItem is a tracked physical asset (appliance or system) with
// installation and warranty metadata plus photo attachments.
type HomeItem struct {
	ID             string     `json:"id"`
	HomeID         string     `json:"homeId"`
	Name           string     `json:"name"`
	Model          string     `json:"model,omitempty"`
	SerialNumber   string     `json:"serialNumber,omitempty"`
	InstallDate    *time.Time `json:"installDate,omitempty"`
	WarrantyEnd    *time.Time `json:"warrantyEnd,omitempty"`
	Room           string     `json:"room,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Photos         []string   `json:"photos,omitempty"`
	ReceiptPhotos  []string   `json:"receiptPhotos,omitempty"`
	WarrantyPhotos []string   `json:"warrantyPhotos,omitempty"`
}

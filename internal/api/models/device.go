package models

// DeviceRegistration is returned when a new device is registered.
type DeviceRegistration struct {
	DeviceID    string    `json:"deviceId"`
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   Timestamp `json:"expiresAt"`
}

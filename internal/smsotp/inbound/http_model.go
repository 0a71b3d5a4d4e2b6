package inbound

import "time"

type DeviceEnrollRequest struct {
	Number string `json:"number"`
	Key    string `json:"key,omitempty"`
}

type DeviceEnrollResponse struct {
	ID     int64  `json:"id,string"`
	Number string `json:"number"`
}

func (DeviceEnrollResponse) Message() string {
	return "Device enrolled. Request a challenge to confirm it."
}

type DeviceResponse struct {
	ID        int64     `json:"id,string"`
	Number    string    `json:"number"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DeviceListResponse struct {
	Devices []DeviceResponse `json:"devices"`
}

type DeviceDetailResponse struct {
	Device DeviceResponse `json:"device"`
}

type DeviceUpdateRequest struct {
	Number *string `json:"number,omitempty"`
	Key    *string `json:"key,omitempty"`
}

type DeviceUpdateResponse struct{}

func (DeviceUpdateResponse) Message() string {
	return "Device updated."
}

type DeviceDeleteResponse struct{}

func (DeviceDeleteResponse) Message() string {
	return "Device deleted."
}

type ChallengeResponse struct {
	Challenge string `json:"challenge"`
}

type TokenVerifyRequest struct {
	Code string `json:"code"`
}

type TokenVerifyResponse struct {
	Verified bool `json:"verified"`
}

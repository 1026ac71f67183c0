package inbound

import (
	"net/http"
	"time"
)

type ProvisioningRequest struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

type ProvisioningResponse struct {
	Kind    string `json:"kind"`
	Counter uint64 `json:"counter"`
	Secret  string `json:"secret"`
	URI     string `json:"uri"`
	QRCode  string `json:"qr_code"`
}

type EnableResponse struct {
	ProvisioningResponse
}

func (EnableResponse) Message() string { return "Two-factor enabled" }

func (EnableResponse) StatusCode() int { return http.StatusCreated }

type ResetResponse struct {
	ProvisioningResponse
}

func (ResetResponse) Message() string { return "Two-factor seed has been reset" }

type DisableResponse struct{}

func (DisableResponse) StatusCode() int { return http.StatusNoContent }

type GenerateGridCardRequest struct {
	Size int `json:"size"`
}

type GenerateGridCardResponse struct {
	Key   string     `json:"key"`
	Codes []string   `json:"codes"`
	Rows  [][]string `json:"rows"`
}

func (GenerateGridCardResponse) StatusCode() int { return http.StatusCreated }

type ActivateGridCardRequest struct {
	Key string `json:"key"`
}

type ActivateGridCardResponse struct {
	Counter   uint64 `json:"counter"`
	Remaining uint64 `json:"remaining"`
}

func (ActivateGridCardResponse) Message() string { return "Grid card activated" }

type VerifyRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	Valid        bool   `json:"valid"`
	Exhausted    bool   `json:"exhausted,omitempty"`
	Remaining    uint64 `json:"remaining,omitempty"`
	RemainingLow bool   `json:"remaining_low,omitempty"`
}

type StatusResponse struct {
	Kind         string    `json:"kind"`
	Counter      uint64    `json:"counter"`
	Remaining    uint64    `json:"remaining,omitempty"`
	RemainingLow bool      `json:"remaining_low"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/twofactor/internal/pkg/router"
	"github.com/shandysiswandi/twofactor/internal/twofactor/entity"
	"github.com/shandysiswandi/twofactor/internal/twofactor/usecase"
)

// gridRowWidth is the number of codes printed per card row.
const gridRowWidth = 10

// HTTPEndpoint exposes the second-factor service to other services.
type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		OwnerID: owner,
		Code:    req.Code,
	})
	if err != nil {
		return nil, err
	}
	if !resp.Valid {
		return VerifyResponse{}, nil
	}

	return VerifyResponse{
		Valid:        resp.Valid,
		Exhausted:    resp.Exhausted,
		Remaining:    resp.Remaining,
		RemainingLow: resp.RemainingLow,
	}, nil
}

func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Status(r.Context(), usecase.StatusInput{OwnerID: owner})
	if err != nil {
		return nil, err
	}

	return StatusResponse{
		Kind:         resp.Kind.String(),
		Counter:      resp.Counter,
		Remaining:    lo.Ternary(resp.Kind == entity.KindHOTP, resp.Remaining, 0),
		RemainingLow: resp.RemainingLow,
		CreatedAt:    resp.CreatedAt,
		UpdatedAt:    resp.UpdatedAt,
	}, nil
}

func (h *HTTPEndpoint) Enable(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	var req ProvisioningRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Enable(r.Context(), usecase.EnableInput{
		OwnerID: owner,
		Kind:    req.Kind,
		Label:   req.Label,
	})
	if err != nil {
		return nil, err
	}

	return EnableResponse{toProvisioningResponse(resp)}, nil
}

func (h *HTTPEndpoint) Reset(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	var req ProvisioningRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Reset(r.Context(), usecase.ResetInput{
		OwnerID: owner,
		Kind:    req.Kind,
		Label:   req.Label,
	})
	if err != nil {
		return nil, err
	}

	return ResetResponse{toProvisioningResponse(resp)}, nil
}

func (h *HTTPEndpoint) Disable(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	if err := h.uc.Disable(r.Context(), usecase.DisableInput{OwnerID: owner}); err != nil {
		return nil, err
	}

	return DisableResponse{}, nil
}

func (h *HTTPEndpoint) Provisioning(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Provisioning(r.Context(), usecase.ProvisioningInput{
		OwnerID: owner,
		Label:   r.GetQuery("label"),
	})
	if err != nil {
		return nil, err
	}

	return toProvisioningResponse(resp), nil
}

func (h *HTTPEndpoint) GenerateGridCard(r *router.Request) (any, error) {
	var req GenerateGridCardRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.GenerateGridCard(r.Context(), usecase.GenerateGridCardInput{Size: req.Size})
	if err != nil {
		return nil, err
	}

	return GenerateGridCardResponse{
		Key:   resp.Key,
		Codes: resp.Codes,
		Rows:  lo.Chunk(resp.Codes, gridRowWidth),
	}, nil
}

func (h *HTTPEndpoint) ActivateGridCard(r *router.Request) (any, error) {
	owner, err := r.GetParamInt64("owner")
	if err != nil {
		return nil, err
	}

	var req ActivateGridCardRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.ActivateGridCard(r.Context(), usecase.ActivateGridCardInput{
		OwnerID: owner,
		Key:     req.Key,
	})
	if err != nil {
		return nil, err
	}

	return ActivateGridCardResponse{
		Counter:   resp.Counter,
		Remaining: resp.Remaining,
	}, nil
}

func toProvisioningResponse(out *usecase.ProvisioningOutput) ProvisioningResponse {
	return ProvisioningResponse{
		Kind:    out.Kind.String(),
		Counter: out.Counter,
		Secret:  out.Secret,
		URI:     out.URI,
		QRCode:  out.QRCode,
	}
}

package inbound

import (
	"context"

	"github.com/shandysiswandi/twofactor/internal/pkg/jwt"
	"github.com/shandysiswandi/twofactor/internal/pkg/router"
	"github.com/shandysiswandi/twofactor/internal/twofactor/usecase"
)

type uc interface {
	Enable(ctx context.Context, in usecase.EnableInput) (*usecase.ProvisioningOutput, error)
	Reset(ctx context.Context, in usecase.ResetInput) (*usecase.ProvisioningOutput, error)
	Disable(ctx context.Context, in usecase.DisableInput) error

	GenerateGridCard(ctx context.Context, in usecase.GenerateGridCardInput) (*usecase.GenerateGridCardOutput, error)
	ActivateGridCard(ctx context.Context, in usecase.ActivateGridCardInput) (*usecase.ActivateGridCardOutput, error)

	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Status(ctx context.Context, in usecase.StatusInput) (*usecase.StatusOutput, error)
	Provisioning(ctx context.Context, in usecase.ProvisioningInput) (*usecase.ProvisioningOutput, error)

	ConsumeUserDeleted(ctx context.Context, in usecase.ConsumeUserDeletedInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	verify := r.Scope(jwt.ScopeVerify)
	manage := r.Scope(jwt.ScopeManage)

	// Verification (login flows)
	verify.POST("/twofactor/owners/:owner/verify", end.Verify)

	// Lifecycle (account settings flows)
	manage.GET("/twofactor/owners/:owner", end.Status)
	manage.POST("/twofactor/owners/:owner/enable", end.Enable)
	manage.POST("/twofactor/owners/:owner/reset", end.Reset)
	manage.DELETE("/twofactor/owners/:owner", end.Disable)
	manage.GET("/twofactor/owners/:owner/provisioning", end.Provisioning)

	// Grid cards
	manage.POST("/twofactor/gridcards", end.GenerateGridCard)
	manage.POST("/twofactor/owners/:owner/gridcard", end.ActivateGridCard)
}

package inbound

import (
	"context"
	"sync"

	"github.com/shandysiswandi/twofactor/internal/twofactor/usecase"
)

type fakeUsecase struct {
	mu  sync.Mutex
	err error

	verifyIn       usecase.VerifyInput
	verifyOut      usecase.VerifyOutput
	enableIn       usecase.EnableInput
	resetIn        usecase.ResetInput
	disableIn      usecase.DisableInput
	generateIn     usecase.GenerateGridCardInput
	activateIn     usecase.ActivateGridCardInput
	provisioningIn usecase.ProvisioningInput
	status         usecase.StatusOutput
	provisioned    usecase.ProvisioningOutput
	codes          []string
	deleted        []int64
}

func (f *fakeUsecase) Enable(_ context.Context, in usecase.EnableInput) (*usecase.ProvisioningOutput, error) {
	f.enableIn = in
	if f.err != nil {
		return nil, f.err
	}
	out := f.provisioned
	return &out, nil
}

func (f *fakeUsecase) Reset(_ context.Context, in usecase.ResetInput) (*usecase.ProvisioningOutput, error) {
	f.resetIn = in
	if f.err != nil {
		return nil, f.err
	}
	out := f.provisioned
	return &out, nil
}

func (f *fakeUsecase) Disable(_ context.Context, in usecase.DisableInput) error {
	f.disableIn = in
	return f.err
}

func (f *fakeUsecase) GenerateGridCard(_ context.Context, in usecase.GenerateGridCardInput) (*usecase.GenerateGridCardOutput, error) {
	f.generateIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.GenerateGridCardOutput{Key: "brzguxg3uw5", Codes: f.codes}, nil
}

func (f *fakeUsecase) ActivateGridCard(_ context.Context, in usecase.ActivateGridCardInput) (*usecase.ActivateGridCardOutput, error) {
	f.activateIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ActivateGridCardOutput{Counter: 1, Remaining: 99}, nil
}

func (f *fakeUsecase) Verify(_ context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	f.verifyIn = in
	if f.err != nil {
		return nil, f.err
	}
	out := f.verifyOut
	return &out, nil
}

func (f *fakeUsecase) Status(_ context.Context, _ usecase.StatusInput) (*usecase.StatusOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.status
	return &out, nil
}

func (f *fakeUsecase) Provisioning(_ context.Context, in usecase.ProvisioningInput) (*usecase.ProvisioningOutput, error) {
	f.provisioningIn = in
	if f.err != nil {
		return nil, f.err
	}
	out := f.provisioned
	return &out, nil
}

func (f *fakeUsecase) ConsumeUserDeleted(_ context.Context, in usecase.ConsumeUserDeletedInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, in.UserID)
	return f.err
}

func (f *fakeUsecase) deletedUsers() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int64(nil), f.deleted...)
}

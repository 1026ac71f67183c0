package event

const TwoFactorCodesLowDestination string = "twofactor.codes_low"

type TwoFactorCodesLowMessage struct {
	OwnerID    int64  `json:"owner_id"`
	Remaining  uint64 `json:"remaining"`
	OccurredAt int64  `json:"occurred_at"`
}

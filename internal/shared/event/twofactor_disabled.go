package event

const TwoFactorDisabledDestination string = "twofactor.disabled"

type TwoFactorDisabledMessage struct {
	OwnerID    int64  `json:"owner_id"`
	Kind       string `json:"kind"`
	Reason     string `json:"reason"`
	OccurredAt int64  `json:"occurred_at"`
}

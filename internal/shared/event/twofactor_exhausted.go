package event

const TwoFactorExhaustedDestination string = "twofactor.exhausted"

type TwoFactorExhaustedMessage struct {
	OwnerID    int64  `json:"owner_id"`
	Kind       string `json:"kind"`
	Counter    uint64 `json:"counter"`
	OccurredAt int64  `json:"occurred_at"`
}

package event

const UserDeletedDestination string = "identity.user_deleted"
const UserDeletedConsumerTwoFactor string = "identity.user_deleted.twofactor"

type UserDeletedMessage struct {
	UserID int64 `json:"user_id"`
}

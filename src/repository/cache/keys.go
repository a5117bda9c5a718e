package cache

import "fmt"

const (
	USER_SUMMARY_KEY = "user-summary:%s" // <userID>
)

func UserSummaryKey(userID string) string {
	return fmt.Sprintf(USER_SUMMARY_KEY, userID)
}

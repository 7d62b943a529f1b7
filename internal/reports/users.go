package reports

import (
	"gastos/internal/models"
	"gastos/internal/money"

	"gorm.io/gorm"
)

// UserActivity ranks a user by how many movements they recorded.
type UserActivity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	MovementCount int64  `json:"movement_count"`
}

type userTypeTotal struct {
	UserID string
	Type   models.MovementType
	Count  int64
	Total  money.Amount
}

// TotalsByUser returns the movement totals of each listed user. Users without
// movements get zero totals.
func TotalsByUser(db *gorm.DB, userIDs []string) (map[string]Totals, error) {
	result := make(map[string]Totals, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []userTypeTotal
	err := db.Model(&models.Movement{}).
		Select("movements.user_id AS user_id, movements.type AS type, COUNT(*) AS count, COALESCE(SUM(movements.amount), 0) AS total").
		Where("movements.user_id IN ?", userIDs).
		Group("movements.user_id, movements.type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]typeTotal, len(userIDs))
	for _, r := range rows {
		grouped[r.UserID] = append(grouped[r.UserID], typeTotal{Type: r.Type, Count: r.Count, Total: r.Total})
	}
	for _, id := range userIDs {
		result[id] = totalsFromRows(grouped[id])
	}
	return result, nil
}

// TopUsersByActivity returns up to limit users ordered by movement count
// descending, then username ascending.
func TopUsersByActivity(db *gorm.DB, limit int) ([]UserActivity, error) {
	result := []UserActivity{}
	err := db.Model(&models.User{}).
		Select("users.id AS id, users.username AS username, users.email AS email, COUNT(movements.id) AS movement_count").
		Joins("LEFT JOIN movements ON movements.user_id = users.id").
		Group("users.id, users.username, users.email").
		Order("movement_count DESC, users.username ASC").
		Limit(limit).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

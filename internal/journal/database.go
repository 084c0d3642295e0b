package journal

import (
	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Append(event *OrderEvent) error {
	return d.db.Create(event).Error
}

// EventsByOrderID returns the recorded history of one order, oldest first
func (d *Database) EventsByOrderID(orderID string) ([]OrderEvent, error) {
	var events []OrderEvent
	if err := d.db.Where("order_id = ?", orderID).Order("occurred_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByType returns how many events of the given type were recorded
func (d *Database) CountByType(eventType string) (int64, error) {
	var count int64
	if err := d.db.Model(&OrderEvent{}).Where("event_type = ?", eventType).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

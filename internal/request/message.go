package request

import (
	"fmt"
	"time"

	"drivon-backend/internal/models"
)

const emptyCommentPlaceholder = "—"

// AdminMessage renders the Telegram notification text for a validated
// request. The clock reading is passed in so callers and tests control the
// embedded timestamp.
func AdminMessage(req models.Request, clientIP string, now time.Time) string {
	comment := req.Comment
	if comment == "" {
		comment = emptyCommentPlaceholder
	}
	return fmt.Sprintf(
		"🆕 Новая заявка с сайта DRIVON\n"+
			"Имя: %s\n"+
			"Телефон: %s\n"+
			"Автомобиль: %s\n"+
			"Услуга: %s\n"+
			"Комментарий: %s\n"+
			"IP: %s\n"+
			"Время: %s",
		req.Name,
		req.Phone,
		req.Car,
		req.Service,
		comment,
		clientIP,
		now.Format("02.01.2006 15:04"),
	)
}

package schedule

import (
	"fmt"
	"math"
)

// FormatHours renders fractional hours the way the dashboard displays them:
// "2 horas e 30 minutos", singular forms when the hour part is 1 or the
// minute string is "01", minutes omitted when they round to zero.
func FormatHours(hours float64) string {
	whole := int(math.Floor(hours))
	minutes := int(math.Round((hours - math.Floor(hours)) * 60))
	if minutes >= 60 {
		whole++
		minutes = 0
	}

	hourWord := "horas"
	if whole == 1 {
		hourWord = "hora"
	}

	if minutes == 0 {
		return fmt.Sprintf("%d %s", whole, hourWord)
	}

	minuteString := fmt.Sprintf("%02d", minutes)
	minuteWord := "minutos"
	if minuteString == "01" {
		minuteWord = "minuto"
	}

	return fmt.Sprintf("%d %s e %s %s", whole, hourWord, minuteString, minuteWord)
}

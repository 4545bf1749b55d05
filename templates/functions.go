// Package templates centralizes the helper functions shared by the HTML
// report templates.
package templates

import (
	"fmt"
	"html/template"
	"time"
)

// GetTemplateFunc returns the template functions used by the report templates.
func GetTemplateFunc() template.FuncMap {
	return template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			if d < time.Second {
				return fmt.Sprintf("%dms", d.Milliseconds())
			}
			return d.Truncate(time.Millisecond).String()
		},
		"passRateClass": func(rate float64) string {
			if rate == 100 {
				return "100"
			}
			return "low"
		},
	}
}

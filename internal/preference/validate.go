package preference

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aliskhannn/debt-notifier/internal/model"
)

// Validate checks clock values, timezone, types, channels and contacts of p.
func Validate(v *validator.Validate, p model.Preferences) error {
	var fields []model.FieldError
	add := func(field, reason string) {
		fields = append(fields, model.FieldError{Field: field, Reason: reason})
	}

	if p.QuietHours.Enabled {
		if _, err := ParseClock(p.QuietHours.Start); err != nil {
			add("quiet_hours.start", err.Error())
		}
		if _, err := ParseClock(p.QuietHours.End); err != nil {
			add("quiet_hours.end", err.Error())
		}
	}

	if p.QuietHours.Timezone != "" {
		if _, err := time.LoadLocation(p.QuietHours.Timezone); err != nil {
			add("quiet_hours.timezone", "unknown timezone")
		}
	}

	if p.Digest.Enabled {
		if _, err := ParseClock(p.Digest.Time); err != nil {
			add("digest.time", err.Error())
		}
	}

	for t, o := range p.Types {
		if !t.Valid() {
			add("types."+string(t), "unknown notification type")
			continue
		}
		if o.MinPriority != "" && !o.MinPriority.Valid() {
			add("types."+string(t)+".min_priority", "unknown priority")
		}
		for _, c := range o.Channels {
			if !c.Valid() {
				add("types."+string(t)+".channels", "unknown channel "+string(c))
			}
		}
	}

	if v != nil {
		if err := v.Struct(p.Contacts); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return err
			}
			for _, fe := range verrs {
				add("contacts."+fe.Field(), "failed on "+fe.Tag())
			}
		}
	}

	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}

	return nil
}

package postgres

import (
	"time"

	"github.com/fastygo/taskbot/domain"
)

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return domain.WrapError(domain.ErrCodeStore, "postgres: "+op, err)
}

func cutoff(age time.Duration) time.Time {
	return time.Now().UTC().Add(-age)
}

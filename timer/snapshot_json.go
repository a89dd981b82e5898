package timer

import (
	"github.com/tickwerk/tickwerk/util"
	"github.com/tickwerk/tickwerk/util/localtime"
)

type snapshotJSON struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DurationMS  int64          `json:"duration_ms"`
	RemainingMS int64          `json:"remaining_ms"`
	Running     bool           `json:"running"`
	Completed   bool           `json:"completed"`
	CreatedAt   localtime.Time `json:"created_at"`
}

func (sn Snapshot) MarshalJSON() ([]byte, error) {
	return util.JSON.Marshal(snapshotJSON{
		ID:          sn.id.String(),
		Name:        sn.name,
		DurationMS:  sn.duration.Milliseconds(),
		RemainingMS: sn.remaining.Milliseconds(),
		Running:     sn.Running(),
		Completed:   sn.Completed(),
		CreatedAt:   sn.createdAt,
	})
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/prftrack/prf-app-excel/prf"
)

// records is the lookup used to load the purchase request to push or pull.
type records interface {
	Get(ctx context.Context, id int64) (prf.Record, error)
	GetByPRFNo(ctx context.Context, prfNo string) (prf.Record, error)
}

// selector identifies a purchase request by internal id or by PRF number.
type selector struct {
	id    int64
	prfNo string
}

func (s *selector) flags(flagset *pflag.FlagSet) {
	flagset.Int64Var(&s.id, "id", s.id, "Internal database id of the purchase request")
	flagset.StringVar(&s.prfNo, "prf", s.prfNo, "PRF number of the purchase request")
}

func (s *selector) validate() error {
	prfNo := strings.TrimSpace(s.prfNo)

	switch {
	case s.id == 0 && prfNo == "":
		return fmt.Errorf("one of --id or --prf is required")

	case s.id != 0 && prfNo != "":
		return fmt.Errorf("--id and --prf are mutually exclusive")

	case s.id < 0:
		return fmt.Errorf("invalid --id %v", s.id)
	}

	return nil
}

func (s *selector) load(ctx context.Context, db records) (prf.Record, error) {
	if err := s.validate(); err != nil {
		return prf.Record{}, err
	}

	if s.id != 0 {
		debugf("loading purchase request id:%v", s.id)
		return db.Get(ctx, s.id)
	}

	debugf("loading purchase request %v", strings.TrimSpace(s.prfNo))

	return db.GetByPRFNo(ctx, strings.TrimSpace(s.prfNo))
}

func (s *selector) String() string {
	if s.id != 0 {
		return fmt.Sprintf("id:%v", s.id)
	}

	return strings.TrimSpace(s.prfNo)
}

package getalert

import (
	"context"
	"waterreminder/internal/core/domain/alert"
	c "waterreminder/internal/core/domain/common"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/services"
)

type Input struct{}

type Result struct {
	State alert.State
	Alert c.Optional[alert.Alert]
}

type service struct {
	ringer alert.Ringer
}

func New(ringer alert.Ringer) services.Service[Input, Result] {
	if ringer == nil {
		panic(e.NewNilArgumentError("ringer"))
	}
	return &service{ringer: ringer}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	current, state := s.ringer.Current()
	result.State = state
	if state == alert.StateSounding {
		result.Alert = c.NewOptional(current, true)
	}
	return result, nil
}

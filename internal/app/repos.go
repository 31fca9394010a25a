package app

import (
	"gorm.io/gorm"

	assessmentrepo "github.com/sahanw/arogya-backend/internal/data/repos/assessment"
	participantrepo "github.com/sahanw/arogya-backend/internal/data/repos/participant"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
)

type Repos struct {
	Participant participantrepo.Repo
	Record      assessmentrepo.RecordRepo
	Plan        assessmentrepo.PlanRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Participant: participantrepo.NewRepo(db, log),
		Record:      assessmentrepo.NewRecordRepo(db, log),
		Plan:        assessmentrepo.NewPlanRepo(db, log),
	}
}

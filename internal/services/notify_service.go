// Package services – NotifyService
//
// This file implements the low-skill notification sweep: a batch job that
// scans per-user skill scores, groups the sub-threshold ones by user, and
// creates exactly one targeted notification per affected user per run.
//
// The sweep is intentionally not deduplicated across runs: a user whose
// score stays low is re-notified every time it executes. It is wired to a
// scheduler in main but can equally be triggered from the admin API.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/repo"
)

const (
	// defaultSkillThreshold marks scores strictly below it as "low".
	defaultSkillThreshold = 65
	// maxListedSkills caps how many skills one notification names.
	maxListedSkills = 5

	lowSkillTitle = "Improve your skill scores"
)

// NotifyService runs the skill-score sweep and serves the notification
// read surface.
type NotifyService struct {
	DB        *gorm.DB
	Threshold int
	Log       zerolog.Logger
}

// lowSkill is one sub-threshold score joined with its skill name.
type lowSkill struct {
	skillID uint
	name    string
	score   int
}

// LowSkillSweep scans all user skills below the threshold and creates one
// aggregated notification per affected user. It returns the number of
// notifications created.
func (s *NotifyService) LowSkillSweep(ctx context.Context) (int, error) {
	threshold := s.Threshold
	if threshold <= 0 {
		threshold = defaultSkillThreshold
	}

	rows, err := repo.ListLowSkills(ctx, s.DB, threshold)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	byUser := make(map[string][]lowSkill)
	order := make([]string, 0)
	for _, us := range rows {
		if us.UserID == "" {
			continue
		}
		if _, seen := byUser[us.UserID]; !seen {
			order = append(order, us.UserID)
		}
		byUser[us.UserID] = append(byUser[us.UserID], lowSkill{
			skillID: us.SkillID,
			name:    us.Skill.Name,
			score:   us.SkillScore,
		})
	}

	caser := cases.Title(language.English)
	created := 0
	for _, userID := range order {
		skills := byUser[userID]
		sort.Slice(skills, func(i, j int) bool { return skills[i].score < skills[j].score })

		message := s.buildMessage(caser, skills, threshold)
		metadata, err := json.Marshal(map[string]any{
			"threshold": threshold,
			"skills":    skillMeta(skills),
		})
		if err != nil {
			return created, err
		}

		uid := userID
		n := &domain.Notification{
			Type:      domain.NotificationSkillImprovement,
			Title:     lowSkillTitle,
			Message:   message,
			TargetAll: false,
			Metadata:  datatypes.JSON(metadata),
			UserID:    &uid,
		}
		if err := repo.CreateNotification(ctx, s.DB, n); err != nil {
			return created, err
		}
		created++
	}

	s.Log.Info().Int("threshold", threshold).Int("created", created).Msg("low-skill sweep completed")
	return created, nil
}

// buildMessage renders the per-user notification text: a single low skill
// is named with its score; multiple skills list the lowest five ascending.
func (s *NotifyService) buildMessage(caser cases.Caser, skills []lowSkill, threshold int) string {
	if len(skills) == 1 {
		return fmt.Sprintf(
			"Your skill score for %s is %d/100, which is below %d. Consider taking the assessment to improve your score.",
			caser.String(skills[0].name), skills[0].score, threshold,
		)
	}

	listed := skills
	if len(listed) > maxListedSkills {
		listed = listed[:maxListedSkills]
	}
	parts := make([]string, 0, len(listed))
	for _, sk := range listed {
		parts = append(parts, fmt.Sprintf("%s (%d/100)", caser.String(sk.name), sk.score))
	}
	return fmt.Sprintf(
		"Several of your skills are below %d: %s. Consider taking assessments to improve your scores.",
		threshold, strings.Join(parts, ", "),
	)
}

func skillMeta(skills []lowSkill) []map[string]any {
	out := make([]map[string]any, 0, len(skills))
	for _, sk := range skills {
		out = append(out, map[string]any{"skillId": sk.skillID, "score": sk.score})
	}
	return out
}

// List returns a user's notifications, targeted plus broadcasts.
func (s *NotifyService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return repo.ListNotifications(ctx, s.DB, userID)
}

// MarkRead flips the read flag on one of the user's notifications.
func (s *NotifyService) MarkRead(ctx context.Context, id uint, userID string) error {
	if err := repo.MarkNotificationRead(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

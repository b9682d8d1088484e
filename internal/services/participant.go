package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
)

// ErrNoIdentity means neither a Telegram user id nor a usable display name
// was available. Such a photo is uncreditable and must be skipped; it is
// never attributed to a catch-all participant.
var ErrNoIdentity = errors.New("no usable participant identity")

var ErrParticipantNotFound = errors.New("participant not found")

type ParticipantService struct {
	db *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{db: db}
}

// NormalizeName lowercases and collapses whitespace for name-keyed identities.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// NormalizeCode accepts "7", "07" or "#07" and returns the stored form "#07".
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "#")
	if len(code) == 1 {
		code = "0" + code
	}
	return "#" + code
}

func identityKey(tgUserID *int64, fullName string) (string, error) {
	if tgUserID != nil && *tgUserID != 0 {
		return fmt.Sprintf("tg:%d", *tgUserID), nil
	}
	if normalized := NormalizeName(fullName); normalized != "" {
		return "name:" + normalized, nil
	}
	return "", ErrNoIdentity
}

// Resolve maps a raw (id, username, name) triple to a participant, creating
// one on first sight. The identity-key and code unique constraints are the
// backstop against concurrent resolution: losing a create race surfaces as
// gorm.ErrDuplicatedKey, after which the winner's row is looked up again.
func (s *ParticipantService) Resolve(tgUserID *int64, username *string, fullName string) (*models.Participant, error) {
	key, err := identityKey(tgUserID, fullName)
	if err != nil {
		return nil, err
	}

	displayName := fullName
	if username != nil && *username != "" {
		displayName = "@" + *username
	}

	for attempt := 0; attempt < 3; attempt++ {
		var p models.Participant
		err := s.db.Where("identity_key = ?", key).First(&p).Error
		if err == nil {
			// Refresh handle and display name, last write wins. Code and
			// identity key are immutable.
			updates := map[string]interface{}{"display_name": displayName}
			if username != nil {
				updates["username"] = *username
			}
			if err := s.db.Model(&p).Updates(updates).Error; err != nil {
				return nil, err
			}
			p.DisplayName = displayName
			if username != nil {
				p.Username = username
			}
			return &p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		p, cerr := s.create(key, tgUserID, username, displayName)
		if cerr == nil {
			return &p, nil
		}
		if !errors.Is(cerr, gorm.ErrDuplicatedKey) {
			return nil, cerr
		}
		// Lost the race on identity_key or on the code counter; retry.
	}
	return nil, fmt.Errorf("resolve %s: create retries exhausted", key)
}

// create allocates the next sequential code and inserts the participant in
// one transaction, so two new identities can never share a code.
func (s *ParticipantService) create(key string, tgUserID *int64, username *string, displayName string) (models.Participant, error) {
	var p models.Participant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var setting models.Setting
		next := 1
		err := tx.Where("key = ?", models.SettingNextCodeNumber).First(&setting).Error
		switch {
		case err == nil:
			if n, perr := strconv.Atoi(setting.Value); perr == nil && n > 0 {
				next = n
			}
			if err := tx.Model(&models.Setting{}).Where("key = ?", models.SettingNextCodeNumber).
				Update("value", strconv.Itoa(next+1)).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Setting{Key: models.SettingNextCodeNumber, Value: "2"}).Error; err != nil {
				return err
			}
		default:
			return err
		}

		p = models.Participant{
			Code:        fmt.Sprintf("#%02d", next),
			IdentityKey: key,
			TgUserID:    tgUserID,
			Username:    username,
			DisplayName: displayName,
			FirstSeen:   time.Now(),
		}
		return tx.Create(&p).Error
	})
	return p, err
}

func (s *ParticipantService) ByCode(code string) (*models.Participant, error) {
	var p models.Participant
	err := s.db.Where("code = ?", NormalizeCode(code)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Remove deletes a participant and everything attributed to them.
func (s *ParticipantService) Remove(code string) (*models.Participant, error) {
	p, err := s.ByCode(code)
	if err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("participant_id = ?", p.ID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", p.ID).Delete(&models.Adjustment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("participant_id = ?", p.ID).Delete(&models.PhotoHash{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Participant{}, p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

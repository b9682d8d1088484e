package services

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"math/bits"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/models"

	"gorm.io/gorm"
)

// FraudService keeps perceptual hashes of accepted photos and logs near
// matches. It is advisory only: template-generated cards from unrelated
// participants hash near-identically, so similarity never blocks a
// submission. Disabled unless FRAUD_DETECTION is set.
type FraudService struct {
	db        *gorm.DB
	enabled   bool
	threshold int
}

func NewFraudService(db *gorm.DB, enabled bool) *FraudService {
	return &FraudService{db: db, enabled: enabled, threshold: 6}
}

func (s *FraudService) Enabled() bool {
	return s.enabled
}

// Record stores the hash and logs any stored hash within the hamming
// threshold. Errors are logged and swallowed; fraud bookkeeping must never
// fail a submission.
func (s *FraudService) Record(participantID uint, phash string) {
	if !s.enabled || phash == "" {
		return
	}

	var hashes []models.PhotoHash
	if err := s.db.Find(&hashes).Error; err != nil {
		log.Printf("[fraud] load hashes: %v", err)
		return
	}
	for _, h := range hashes {
		if d, ok := hammingHex(phash, h.Phash); ok && d <= s.threshold {
			log.Printf("[fraud] advisory: hash %s within distance %d of participant %v's earlier photo",
				phash, d, h.ParticipantID)
		}
	}

	row := models.PhotoHash{ParticipantID: &participantID, Phash: phash}
	if err := s.db.Create(&row).Error; err != nil {
		log.Printf("[fraud] store hash: %v", err)
	}
}

// PhotoHashStub derives a stable hex token from the platform file unique id.
// Stand-in for a real perceptual hash: the advisory layer only needs a stable
// per-upload value, since the bot never downloads photo bytes.
func PhotoHashStub(fileUniqueID string) string {
	sum := sha256.Sum256([]byte(fileUniqueID))
	return hex.EncodeToString(sum[:8])
}

// hammingHex is the bit distance between two equal-length hex strings.
func hammingHex(a, b string) (int, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}
	dist := 0
	for i := 0; i < len(a); i++ {
		x, okX := hexNibble(a[i])
		y, okY := hexNibble(b[i])
		if !okX || !okY {
			return 0, false
		}
		dist += bits.OnesCount8(x ^ y)
	}
	return dist, true
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

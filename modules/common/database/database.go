package database

import (
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"fortune-canvas-server/modules/common/config"
)

const shareTable = "fortune_shares"

// ShareRecord - 공유 링크 기록
type ShareRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Mood      string    `json:"mood"`
	URL       string    `json:"url"`
	MIMEType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성 (Supabase 미설정 시 nil)
func NewClient(cfg *config.Config) *Client {
	if !cfg.SupabaseEnabled() {
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		zap.S().Errorf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// InsertShare - 공유 기록 저장
func (c *Client) InsertShare(record ShareRecord) error {
	zap.S().Infof("📝 Recording share %s for session %s", record.ID, record.SessionID)

	_, _, err := c.supabase.From(shareTable).
		Insert(record, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert share record: %w", err)
	}
	return nil
}

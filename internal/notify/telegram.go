package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dewvow/housepulse/internal/metrics"
	"github.com/dewvow/housepulse/internal/models"
)

// Config controls the Telegram notifier. MinYield gates notifications to
// suburbs whose best yield reaches the threshold; zero means every save
// notifies.
type Config struct {
	Enabled  bool
	BotToken string
	ChatID   string
	MinYield float64
}

// Service sends Telegram messages about notable suburb saves.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config Config
	apiURL string
}

// NewService creates a Telegram notification service.
func NewService(config Config, logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		config: config,
		apiURL: "https://api.telegram.org",
	}
}

// SendMessage sends a message to the configured Telegram chat.
func (s *Service) SendMessage(message string) error {
	if !s.config.Enabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiURL, s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifySuburbSaved sends a notification when a saved suburb clears the
// yield threshold. Saves below the threshold are silently skipped.
func (s *Service) NotifySuburbSaved(record models.SuburbRecord) error {
	if !s.config.Enabled {
		return nil
	}

	best := metrics.BestYield(record)
	if best < s.config.MinYield {
		return nil
	}

	hot := ""
	if record.IsHot {
		hot = " 🔥"
	}

	distance := "unknown"
	if record.DistanceToCapital > 0 {
		distance = fmt.Sprintf("%.1f km", record.DistanceToCapital)
	}

	message := fmt.Sprintf(
		"<b>Suburb saved%s</b>\n\n"+
			"🏘️ %s, %s %s\n"+
			"📈 Best yield: %.2f%%\n"+
			"📍 Distance to capital: %s\n\n"+
			"🔗 <a href=\"%s\">View on realestate.com.au</a>",
		hot,
		record.Suburb,
		models.StateName(record.State),
		record.Postcode,
		best,
		distance,
		ListingURL(record),
	)

	return s.SendMessage(message)
}

// ListingURL builds the realestate.com.au search page for a suburb.
func ListingURL(record models.SuburbRecord) string {
	name := strings.Join(strings.Fields(strings.ToLower(record.Suburb)), "-")
	return fmt.Sprintf("https://www.realestate.com.au/%s/%s-%s/",
		strings.ToLower(string(record.State)), name, record.Postcode)
}

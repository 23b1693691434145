package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
)

const connectTimeout = 5 * time.Second

// MQTTConfig holds broker connection settings.
type MQTTConfig struct {
	Host  string
	Port  int
	Topic string
}

// MQTT publishes check-in events to a broker so displays and integrations
// can react in real time.  A client built with an empty host is disabled and
// silently drops everything.
type MQTT struct {
	client  paho.Client
	topic   string
	enabled bool
	logger  *log.Logger
}

type checkinMessage struct {
	StudentID   string    `json:"student_id"`
	ClassID     string    `json:"class_id"`
	CheckInTime time.Time `json:"check_in_time"`
	Method      string    `json:"method"`
}

// NewMQTT creates the publisher.  Returns a disabled no-op client if no host
// is configured.
func NewMQTT(cfg MQTTConfig, clientID string, logger *log.Logger) (*MQTT, error) {
	m := &MQTT{topic: cfg.Topic, logger: logger}

	if cfg.Host == "" {
		logger.Printf("mqtt publishing disabled (no host configured)")
		return m, nil
	}
	if cfg.Topic == "" {
		m.topic = "attendance/checkins"
	}

	broker := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}

	m.client = client
	m.enabled = true
	logger.Printf("mqtt publishing to %s topic=%s", broker, m.topic)
	return m, nil
}

// CheckinRecorded publishes the check-in at QoS 0.  Failures are logged and
// dropped; attendance processing never depends on the broker.
func (m *MQTT) CheckinRecorded(rec store.AttendanceRecord) {
	if !m.enabled {
		return
	}

	payload, err := json.Marshal(checkinMessage{
		StudentID:   rec.StudentID,
		ClassID:     rec.ClassID,
		CheckInTime: rec.CheckInTime.UTC(),
		Method:      rec.Method,
	})
	if err != nil {
		m.logger.Printf("mqtt marshal checkin: %v", err)
		return
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			m.logger.Printf("mqtt publish checkin: %v", err)
		}
	}()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	if m.enabled {
		m.client.Disconnect(250)
	}
}

package motor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MaxBatchWindow is the longest a TripManager may hold points before sending.
const MaxBatchWindow = 60 * time.Second

// GPSPoint is one location fix. Optional readings are omitted when nil.
type GPSPoint struct {
	Lat                  float64  `json:"lat"`
	Lng                  float64  `json:"lng"`
	Accuracy             *float64 `json:"a,omitempty"`
	Altitude             *float64 `json:"alt,omitempty"`
	Acceleration         *float64 `json:"acc,omitempty"`
	Speed                *float64 `json:"s,omitempty"`
	Bearing              *float64 `json:"b,omitempty"`
	BearingAccuracy      *float64 `json:"bAcc,omitempty"`
	VerticalAcceleration *float64 `json:"va,omitempty"`
	// Timestamp in milliseconds since the epoch. Filled in when zero.
	Timestamp int64 `json:"ts"`
}

// Validate checks the coordinate ranges.
func (p *GPSPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: lat %v must be between -90 and 90", ErrInvalidCoordinate, p.Lat)
	}

	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: lng %v must be between -180 and 180", ErrInvalidCoordinate, p.Lng)
	}

	return nil
}

// MotionPoint is an accelerometer (m/s2) or gyroscope (rad/s) sample.
type MotionPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp int64   `json:"ts"`
}

// Alert is a driving event detected on the device.
type Alert struct {
	Code         string   `json:"code"`
	Measurement1 *float64 `json:"m1,omitempty"`
	Measurement2 *float64 `json:"m2,omitempty"`
	Measurement3 *float64 `json:"m3,omitempty"`
	OnDevice     bool     `json:"onDevice"`
	Shown        bool     `json:"shown"`
	Timestamp    int64    `json:"ts"`
}

// TrackBatch is the body of a telematics /track call.
type TrackBatch struct {
	SourceID string        `json:"sourceId"`
	OrgID    string        `json:"orgId,omitempty"`
	GPS      []GPSPoint    `json:"gps"`
	Acc      []MotionPoint `json:"acc"`
	Gyro     []MotionPoint `json:"gyro"`
	Alerts   []Alert       `json:"alerts"`
}

// Len is the number of points and alerts in the batch.
func (b *TrackBatch) Len() int {
	return len(b.GPS) + len(b.Acc) + len(b.Gyro) + len(b.Alerts)
}

// Tracker sends telematics batches.
type Tracker interface {
	Track(ctx context.Context, batch *TrackBatch) error
}

// TripManager buffers the telematics of one trip and sends it in batches. A
// zero batch window sends on every point. Use one manager per trip.
type TripManager struct {
	mu        sync.Mutex
	tracker   Tracker
	sourceID  string
	orgID     string
	window    time.Duration
	lastBatch time.Time
	now       func() time.Time

	gps    []GPSPoint
	acc    []MotionPoint
	gyro   []MotionPoint
	alerts []Alert
}

// NewTripManager validates the batch window and creates a manager.
func NewTripManager(tracker Tracker, sourceID, orgID string, window time.Duration) (*TripManager, error) {
	if window < 0 || window > MaxBatchWindow {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidBatchWindow, window)
	}

	if sourceID == "" {
		return nil, fmt.Errorf("source: %w", ErrIDRequired)
	}

	return &TripManager{
		tracker:   tracker,
		sourceID:  sourceID,
		orgID:     orgID,
		window:    window,
		now:       time.Now,
		lastBatch: time.Now(),
	}, nil
}

// WithClock replaces the time source; used in tests.
func (m *TripManager) WithClock(now func() time.Time) *TripManager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
	m.lastBatch = now()

	return m
}

// AddGPS records a location fix.
func (m *TripManager) AddGPS(ctx context.Context, point GPSPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	point.Timestamp = m.stamp(point.Timestamp)
	m.gps = append(m.gps, point)

	return m.sendCheckLocked(ctx, false)
}

// AddAccelerometer records an accelerometer sample.
func (m *TripManager) AddAccelerometer(ctx context.Context, point MotionPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	point.Timestamp = m.stamp(point.Timestamp)
	m.acc = append(m.acc, point)

	return m.sendCheckLocked(ctx, false)
}

// AddGyroscope records a gyroscope sample.
func (m *TripManager) AddGyroscope(ctx context.Context, point MotionPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	point.Timestamp = m.stamp(point.Timestamp)
	m.gyro = append(m.gyro, point)

	return m.sendCheckLocked(ctx, false)
}

// AddAlert records a driving alert.
func (m *TripManager) AddAlert(ctx context.Context, alert Alert) error {
	if alert.Code == "" {
		return ErrAlertCodeRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	alert.Timestamp = m.stamp(alert.Timestamp)
	m.alerts = append(m.alerts, alert)

	return m.sendCheckLocked(ctx, false)
}

// Flush sends whatever is buffered regardless of the batch window.
func (m *TripManager) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sendCheckLocked(ctx, true)
}

// Pending returns the number of buffered points and alerts.
func (m *TripManager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.gps) + len(m.acc) + len(m.gyro) + len(m.alerts)
}

// Clear drops everything buffered.
func (m *TripManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearLocked()
}

func (m *TripManager) clearLocked() {
	m.gps, m.acc, m.gyro, m.alerts = nil, nil, nil, nil
}

func (m *TripManager) stamp(ts int64) int64 {
	if ts != 0 {
		return ts
	}

	return m.now().UnixMilli()
}

// sendCheckLocked sends the buffer when it is non-empty and the window has
// elapsed. The buffer is kept if the send fails.
func (m *TripManager) sendCheckLocked(ctx context.Context, force bool) error {
	if len(m.gps)+len(m.acc)+len(m.gyro)+len(m.alerts) == 0 {
		return nil
	}

	now := m.now()
	if !force && m.window > 0 && now.Sub(m.lastBatch) < m.window {
		return nil
	}

	batch := &TrackBatch{
		SourceID: m.sourceID,
		OrgID:    m.orgID,
		GPS:      nonNil(m.gps),
		Acc:      nonNil(m.acc),
		Gyro:     nonNil(m.gyro),
		Alerts:   nonNil(m.alerts),
	}

	if err := m.tracker.Track(ctx, batch); err != nil {
		return fmt.Errorf("sending trip batch: %w", err)
	}

	m.clearLocked()
	m.lastBatch = now

	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}

package openf1

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	apperrors "github.com/lupinelegend/f1-radio-archive/internal/errors"
	"github.com/lupinelegend/f1-radio-archive/internal/metrics"
	"github.com/lupinelegend/f1-radio-archive/internal/model"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/clip"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/driver"
	"github.com/lupinelegend/f1-radio-archive/internal/repository/race"
)

// FirstSupportedYear is the first season with team radio in OpenF1
const FirstSupportedYear = 2023

// SyncFilter narrows the sessions to sync. Latest wins over SessionKey, which wins
// over Year; zero means unset.
type SyncFilter struct {
	SessionKey int  `json:"session_key"`
	Year       int  `json:"year"`
	Latest     bool `json:"latest"`
}

// SyncSummary counts what one sync run did
type SyncSummary struct {
	SessionsProcessed  int `json:"sessions_processed"`
	SessionsSkipped    int `json:"sessions_skipped"`
	TotalRadioMessages int `json:"total_radio_messages"`
	NewRadioMessages   int `json:"new_radio_messages"`
	DuplicateMessages  int `json:"duplicate_messages"`
	OrphanMessages     int `json:"orphan_messages"`
	FailedMessages     int `json:"failed_messages"`
}

// SessionStatus is an OpenF1 session and whether its race is already stored
type SessionStatus struct {
	Session
	Synced bool `json:"synced"`
}

// SyncService mirrors OpenF1 sessions, drivers and team radio into the catalog
type SyncService interface {
	Sync(ctx context.Context, filter SyncFilter) (*SyncSummary, error)
	ListSessions(ctx context.Context, year int) ([]SessionStatus, error)
	ListMeetings(ctx context.Context, year int) ([]Meeting, error)
}

type syncService struct {
	client  Client
	drivers driver.Repository
	races   race.Repository
	clips   clip.Repository
	log     logrus.FieldLogger
	metrics *metrics.PipelineMetrics
}

// NewSyncService creates a SyncService. m may be nil.
func NewSyncService(client Client, drivers driver.Repository, races race.Repository, clips clip.Repository, log logrus.FieldLogger, m *metrics.PipelineMetrics) SyncService {
	return &syncService{
		client:  client,
		drivers: drivers,
		races:   races,
		clips:   clips,
		log:     log,
		metrics: m,
	}
}

// ValidateYear accepts seasons from FirstSupportedYear through the current year
func ValidateYear(year int, now time.Time) error {
	if year < FirstSupportedYear || year > now.Year() {
		return apperrors.New(apperrors.CodeInvalidArg,
			fmt.Sprintf("invalid year %d: must be between %d and %d", year, FirstSupportedYear, now.Year()))
	}
	return nil
}

func (s *syncService) ListSessions(ctx context.Context, year int) ([]SessionStatus, error) {
	sessions, err := s.client.FetchSessions(ctx, SessionParams{Year: year})
	if err != nil {
		return nil, err
	}

	out := make([]SessionStatus, 0, len(sessions))
	for _, session := range sessions {
		_, err := s.races.GetBySessionKey(ctx, session.SessionKey)
		switch {
		case err == nil:
			out = append(out, SessionStatus{Session: session, Synced: true})
		case apperrors.HasCode(err, apperrors.CodeNotFound):
			out = append(out, SessionStatus{Session: session})
		default:
			return nil, err
		}
	}
	return out, nil
}

func (s *syncService) ListMeetings(ctx context.Context, year int) ([]Meeting, error) {
	return s.client.FetchMeetings(ctx, MeetingParams{Year: year})
}

func (s *syncService) Sync(ctx context.Context, filter SyncFilter) (*SyncSummary, error) {
	summary := &SyncSummary{}
	// driver number -> stored id for this run; "" marks a known orphan
	driverIDs := cache.New(cache.NoExpiration, 0)

	if filter.Latest {
		return summary, s.syncLatest(ctx, driverIDs, summary)
	}

	params := SessionParams{}
	if filter.SessionKey != 0 {
		params.SessionKey = filter.SessionKey
	} else if filter.Year != 0 {
		params.Year = filter.Year
	}

	sessions, err := s.client.FetchSessions(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return summary, ErrNoSessionsFound
	}

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.SessionsProcessed++

		if !s.syncSession(ctx, session, driverIDs, summary) {
			summary.SessionsSkipped++
			s.metrics.RecordSession(metrics.ResultSkipped)
			continue
		}
		s.metrics.RecordSession(metrics.ResultProcessed)
	}

	return summary, nil
}

// syncLatest stores the team radio of the last seven days. Recordings already in
// the catalog are counted up front so only sessions with new audio are fetched.
func (s *syncService) syncLatest(ctx context.Context, driverIDs *cache.Cache, summary *SyncSummary) error {
	messages, err := s.client.FetchLatestTeamRadio(ctx)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return ErrNoSessionsFound
	}
	summary.TotalRadioMessages = len(messages)

	fresh := map[int][]TeamRadioMessage{}
	var sessionKeys []int
	for _, msg := range messages {
		exists, err := s.clips.ExistsByAudioURL(ctx, msg.RecordingURL)
		if err != nil {
			s.log.WithError(err).WithField("audio_url", msg.RecordingURL).Warn("failed to check radio message")
			summary.FailedMessages++
			s.metrics.RecordClip(metrics.ResultFailed)
			continue
		}
		if exists {
			summary.DuplicateMessages++
			s.metrics.RecordClip(metrics.ResultDuplicate)
			continue
		}
		if _, seen := fresh[msg.SessionKey]; !seen {
			sessionKeys = append(sessionKeys, msg.SessionKey)
		}
		fresh[msg.SessionKey] = append(fresh[msg.SessionKey], msg)
	}

	for _, key := range sessionKeys {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.SessionsProcessed++

		sessions, err := s.client.FetchSessions(ctx, SessionParams{SessionKey: key})
		if err != nil || len(sessions) == 0 {
			s.log.WithError(err).WithField("session_key", key).Warn("failed to fetch session, skipping")
			summary.SessionsSkipped++
			s.metrics.RecordSession(metrics.ResultSkipped)
			continue
		}

		if !s.storeSession(ctx, sessions[0], fresh[key], driverIDs, summary) {
			summary.SessionsSkipped++
			s.metrics.RecordSession(metrics.ResultSkipped)
			continue
		}
		s.metrics.RecordSession(metrics.ResultProcessed)
	}

	return nil
}

// syncSession reports false when the session had to be skipped
func (s *syncService) syncSession(ctx context.Context, session Session, driverIDs *cache.Cache, summary *SyncSummary) bool {
	messages, err := s.client.FetchTeamRadio(ctx, TeamRadioParams{SessionKey: session.SessionKey})
	if err != nil {
		s.log.WithError(err).WithField("session_key", session.SessionKey).Warn("failed to fetch team radio, skipping session")
		return false
	}
	summary.TotalRadioMessages += len(messages)

	return s.storeSession(ctx, session, messages, driverIDs, summary)
}

// storeSession upserts the session's drivers and race, then inserts its messages
func (s *syncService) storeSession(ctx context.Context, session Session, messages []TeamRadioMessage, driverIDs *cache.Cache, summary *SyncSummary) bool {
	log := s.log.WithFields(logrus.Fields{
		"session_key":  session.SessionKey,
		"session_name": session.SessionName,
	})
	log.Info("processing session")

	drivers, err := s.client.FetchDrivers(ctx, DriverParams{SessionKey: session.SessionKey})
	if err != nil {
		log.WithError(err).Warn("failed to fetch drivers, skipping session")
		return false
	}

	for _, d := range drivers {
		stored := &model.Driver{
			Number:      d.DriverNumber,
			Name:        d.FullName,
			Team:        d.TeamName,
			TeamColor:   d.TeamColour,
			CountryCode: d.CountryCode,
			HeadshotURL: d.HeadshotURL,
			NameAcronym: d.NameAcronym,
		}
		if err := s.drivers.Upsert(ctx, stored); err != nil {
			log.WithError(err).WithField("driver_number", d.DriverNumber).Warn("failed to upsert driver")
			continue
		}
		driverIDs.Set(strconv.Itoa(d.DriverNumber), stored.ID, cache.NoExpiration)
	}

	raceDate, err := parseTimestamp(session.DateStart)
	if err != nil {
		log.WithError(err).Warn("invalid session start date, skipping session")
		return false
	}
	r := &model.Race{
		Name:       fmt.Sprintf("%s - %s", session.Location, session.SessionName),
		Location:   session.Location,
		Season:     session.Year,
		RaceDate:   raceDate,
		SessionKey: session.SessionKey,
		MeetingKey: session.MeetingKey,
	}
	if err := s.races.Upsert(ctx, r); err != nil {
		log.WithError(err).Warn("failed to upsert race, skipping session")
		return false
	}

	for _, msg := range messages {
		result := s.syncMessage(ctx, log, session, r.ID, msg, driverIDs)
		switch result {
		case metrics.ResultNew:
			summary.NewRadioMessages++
		case metrics.ResultDuplicate:
			summary.DuplicateMessages++
		case metrics.ResultOrphan:
			summary.OrphanMessages++
		default:
			summary.FailedMessages++
		}
		s.metrics.RecordClip(result)
	}

	return true
}

func (s *syncService) syncMessage(ctx context.Context, log logrus.FieldLogger, session Session, raceID string, msg TeamRadioMessage, driverIDs *cache.Cache) string {
	log = log.WithField("driver_number", msg.DriverNumber)

	driverID, err := s.resolveDriver(ctx, msg.DriverNumber, driverIDs)
	if err != nil {
		log.WithError(err).Warn("failed to resolve driver")
		return metrics.ResultFailed
	}
	if driverID == "" {
		log.Warn("driver not found, skipping radio message")
		return metrics.ResultOrphan
	}

	recordedAt, err := parseTimestamp(msg.Date)
	if err != nil {
		log.WithError(err).Warn("invalid radio message date")
		return metrics.ResultFailed
	}

	empty := ""
	c := &model.Clip{
		Title:      fmt.Sprintf("%s - Driver %d", session.SessionName, msg.DriverNumber),
		AudioURL:   msg.RecordingURL,
		DriverID:   driverID,
		RaceID:     &raceID,
		RecordedAt: recordedAt,
		Duration:   0,
		Transcript: &empty,
	}

	inserted, err := s.clips.InsertIfAbsent(ctx, c)
	if err != nil {
		log.WithError(err).WithField("audio_url", msg.RecordingURL).Warn("failed to insert clip")
		return metrics.ResultFailed
	}
	if !inserted {
		log.WithField("audio_url", msg.RecordingURL).Debug("radio message already exists")
		return metrics.ResultDuplicate
	}
	return metrics.ResultNew
}

// resolveDriver returns "" with a nil error when the driver is unknown
func (s *syncService) resolveDriver(ctx context.Context, number int, driverIDs *cache.Cache) (string, error) {
	key := strconv.Itoa(number)
	if id, ok := driverIDs.Get(key); ok {
		return id.(string), nil
	}

	d, err := s.drivers.GetByNumber(ctx, number)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			driverIDs.Set(key, "", cache.NoExpiration)
			return "", nil
		}
		return "", err
	}
	driverIDs.Set(key, d.ID, cache.NoExpiration)
	return d.ID, nil
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

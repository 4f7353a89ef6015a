package static

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-portal/data"
	"github.com/jwalitptl/patient-portal/internal/model"
	"github.com/jwalitptl/patient-portal/pkg/circuitbreaker"
	"github.com/jwalitptl/patient-portal/pkg/metrics"
)

const (
	testAppointments = `{"appointments": [
		{"id": 1, "provider": "Dr. A", "specialty": "GP", "date": "2025-01-10", "location": "Paris", "status": "upcoming", "type": "Consultation"},
		{"id": 2, "provider": "Dr. B", "specialty": "Cardio", "date": "2024-11-01", "time": "14:30", "location": "Lyon", "status": "past", "type": "Suivi"}
	]}`
	testRecommendations = `{
		"categories": [{"name": "Nutrition", "color": "#10B981", "icon": "🥗"}],
		"recommendations": [
			{"id": 1, "title": "Zinc", "description": "d", "category": "Nutrition", "priority": "high"}
		],
		"tip_of_the_day": {"id": 1, "title": "Zinc", "description": "d", "category": "Nutrition", "priority": "high"}
	}`
	testRecord = `{
		"patient": {"first_name": "Camille", "last_name": "Bernard", "birth_date": "1985-03-22",
			"national_id": "1", "blood_type": "A+", "attending_physician": "Dr. A"},
		"history": [{"id": 1, "type": "Familial", "description": "Diabète", "date": "Antécédent familial"}],
		"allergies": [],
		"treatments": [{"id": 1, "medication": "X", "dosage": "1/j", "start_date": "2024-01-01", "status": "ongoing"}],
		"vaccinations": [{"id": 1, "vaccine": "Grippe", "date": "2023-11-05", "booster": "2024-11-05"}]
	}`
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		AppointmentsFile:    {Data: []byte(testAppointments)},
		RecommendationsFile: {Data: []byte(testRecommendations)},
		RecordFile:          {Data: []byte(testRecord)},
	}
}

func TestEmbeddedBundleLoads(t *testing.T) {
	src := NewSource(data.FS, Config{}, nil)

	snapshot, err := src.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Len(t, snapshot.Appointments, 5)
	assert.Len(t, snapshot.Recommendations, 10)
	assert.Len(t, snapshot.Categories, 4)
	require.NotNil(t, snapshot.TipOfTheDay)
	assert.Equal(t, "Camille", snapshot.Record.Patient.FirstName)
	assert.NoError(t, src.Ping(context.Background()))
}

func TestSnapshotParsesFields(t *testing.T) {
	src := NewSource(testFS(), Config{}, nil)

	snapshot, err := src.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.NewDate(2025, time.January, 10), snapshot.Appointments[0].Date)
	assert.Equal(t, "14:30", snapshot.Appointments[1].Time)
	assert.Equal(t, model.AppointmentStatusPast, snapshot.Appointments[1].Status)
	assert.Equal(t, "Antécédent familial", snapshot.Record.History[0].Date)
	assert.Nil(t, snapshot.Record.Treatments[0].EndDate)
	assert.Equal(t, model.NewDate(2024, time.November, 5), snapshot.Record.Vaccinations[0].Booster)
}

func TestSnapshotIsCachedUntilInvalidated(t *testing.T) {
	fsys := testFS()
	src := NewSource(fsys, Config{}, nil)
	ctx := context.Background()

	first, err := src.Snapshot(ctx)
	require.NoError(t, err)

	fsys[AppointmentsFile] = &fstest.MapFile{Data: []byte(`{"appointments": []}`)}

	cached, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, cached)

	src.Invalidate()
	reloaded, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Appointments)
}

func TestSnapshotReloadsAfterInterval(t *testing.T) {
	fsys := testFS()
	src := NewSource(fsys, Config{ReloadInterval: 20 * time.Millisecond}, nil)
	ctx := context.Background()

	_, err := src.Snapshot(ctx)
	require.NoError(t, err)

	fsys[AppointmentsFile] = &fstest.MapFile{Data: []byte(`{"appointments": []}`)}
	time.Sleep(50 * time.Millisecond)

	reloaded, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Appointments)
}

func TestSnapshotRejectsInvalidData(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "unknown appointment status",
			file: AppointmentsFile,
			body: `{"appointments": [{"id": 1, "provider": "Dr. A", "specialty": "GP", "date": "2025-01-10", "location": "Paris", "status": "cancelled", "type": "C"}]}`,
		},
		{
			name: "duplicate appointment id",
			file: AppointmentsFile,
			body: `{"appointments": [
				{"id": 1, "provider": "Dr. A", "specialty": "GP", "date": "2025-01-10", "location": "Paris", "status": "past", "type": "C"},
				{"id": 1, "provider": "Dr. B", "specialty": "GP", "date": "2025-01-11", "location": "Paris", "status": "past", "type": "C"}
			]}`,
		},
		{
			name: "malformed date",
			file: AppointmentsFile,
			body: `{"appointments": [{"id": 1, "provider": "Dr. A", "specialty": "GP", "date": "10/01/2025", "location": "Paris", "status": "past", "type": "C"}]}`,
		},
		{
			name: "unknown priority",
			file: RecommendationsFile,
			body: `{"categories": [], "recommendations": [{"id": 1, "title": "t", "description": "d", "category": "Sommeil", "priority": "urgent"}]}`,
		},
		{
			name: "missing patient name",
			file: RecordFile,
			body: `{"patient": {"last_name": "B", "birth_date": "1985-03-22", "national_id": "1", "blood_type": "A+", "attending_physician": "Dr"}}`,
		},
		{
			name: "not json",
			file: RecordFile,
			body: `patient: camille`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testFS()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.body)}

			_, err := NewSource(fsys, Config{}, nil).Snapshot(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.file)
		})
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	fsys := testFS()
	delete(fsys, RecordFile)
	m := metrics.NewMetrics("test", prometheus.NewRegistry())

	src := NewSource(fsys, Config{}, m)
	err := src.Ping(context.Background())

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DataLoads.WithLabelValues("error")))
}

func TestSnapshotHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(testFS(), Config{}, nil).Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotStopsRetryingAfterRepeatedFailures(t *testing.T) {
	fsys := testFS()
	delete(fsys, RecordFile)
	src := NewSource(fsys, Config{FailureThreshold: 2, RetryAfter: time.Hour}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := src.Snapshot(ctx)
		require.ErrorIs(t, err, fs.ErrNotExist)
	}

	fsys[RecordFile] = &fstest.MapFile{Data: []byte(testRecord)}

	_, err := src.Snapshot(ctx)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestRefreshKeepsLastGoodSnapshot(t *testing.T) {
	fsys := testFS()
	src := NewSource(fsys, Config{}, nil)
	ctx := context.Background()

	first, err := src.Snapshot(ctx)
	require.NoError(t, err)

	fsys[AppointmentsFile] = &fstest.MapFile{Data: []byte(`not json`)}
	require.Error(t, src.Refresh(ctx))

	current, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, current)

	fsys[AppointmentsFile] = &fstest.MapFile{Data: []byte(`{"appointments": []}`)}
	require.NoError(t, src.Refresh(ctx))

	current, err = src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, current.Appointments)
}

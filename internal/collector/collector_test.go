package collector_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solacq/solacq/internal/api"
	"github.com/solacq/solacq/internal/collector"
	"github.com/solacq/solacq/internal/models"
	"github.com/solacq/solacq/internal/storage/mocks"
)

const recordLivePayload = `{
	"inverter": [[
		{"fld":"P_DC","val":"100"},
		{"fld":"P_DC","val":"50"},
		{"fld":"P_DC","val":"150"},
		{"fld":"U_DC","val":"40"},
		{"fld":"U_DC","val":"38"},
		{"fld":"U_DC","val":"78"},
		{"fld":"I_DC","val":"2.5"},
		{"fld":"I_DC","val":"1.3"},
		{"fld":"I_DC","val":"3.8"},
		{"fld":"P_AC","val":"145"},
		{"fld":"YieldDay","val":"300"},
		{"fld":"YieldDay","val":"200"},
		{"fld":"YieldDay","val":"500"}
	]]
}`

const meterPayload = `{
	"StatusSNS": {
		"": {"Total_out": 1234.5, "Total_in": 678.9, "Power_in": 250, "Meter_Number": "M1"}
	}
}`

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newSource(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gateway := newSource(t, http.StatusOK, recordLivePayload)
	meterSrv := newSource(t, http.StatusOK, meterPayload)

	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *models.InstallationSnapshot, meterSnap *models.MeterSnapshot) error {
			require.NotNil(t, snap)
			require.Len(t, snap.Inverters, 1)
			assert.Equal(t, 145.0, snap.PowerSum)
			assert.Equal(t, 0.5, snap.YieldDaySum)
			assert.Len(t, snap.Inverters[0].Cells, 2)

			require.NotNil(t, meterSnap)
			assert.Equal(t, 250.0, meterSnap.PowerIn)
			assert.Equal(t, "M1", meterSnap.MeterID)
			return nil
		})

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	require.NoError(t, c.RunCycle(context.Background()))

	snap, meterSnap := c.Latest()
	require.NotNil(t, snap)
	require.NotNil(t, meterSnap)
	assert.True(t, c.Ready())
}

// A failed meter fetch must not block the inverter data: the cycle
// still writes inverter and aggregate data, with no meter snapshot.
func TestRunCycleMeterFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gateway := newSource(t, http.StatusOK, recordLivePayload)
	meterSrv := newSource(t, http.StatusInternalServerError, "")

	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, snap *models.InstallationSnapshot, _ *models.MeterSnapshot) error {
			require.NotNil(t, snap)
			assert.Equal(t, 145.0, snap.PowerSum)
			return nil
		})

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	require.NoError(t, c.RunCycle(context.Background()))
}

// The reverse containment: meter data is still written when the
// inverter fetch fails.
func TestRunCycleGatewayFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gateway := newSource(t, http.StatusBadGateway, "")
	meterSrv := newSource(t, http.StatusOK, meterPayload)

	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Nil(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *models.InstallationSnapshot, meterSnap *models.MeterSnapshot) error {
			require.NotNil(t, meterSnap)
			assert.Equal(t, "M1", meterSnap.MeterID)
			return nil
		})

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	require.NoError(t, c.RunCycle(context.Background()))
	assert.False(t, c.Ready())
}

func TestRunCycleStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gateway := newSource(t, http.StatusOK, recordLivePayload)
	meterSrv := newSource(t, http.StatusOK, meterPayload)

	storeErr := errors.New("store unavailable")
	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(storeErr)

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	err := c.RunCycle(context.Background())
	assert.ErrorIs(t, err, storeErr)

	// Nothing is retained for a dropped cycle.
	snap, meterSnap := c.Latest()
	assert.Nil(t, snap)
	assert.Nil(t, meterSnap)
}

// Cycles are independent: a store failure in one cycle does not affect
// the next.
func TestRunCycleRecoversNextCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gateway := newSource(t, http.StatusOK, recordLivePayload)
	meterSrv := newSource(t, http.StatusOK, meterPayload)

	var calls atomic.Int32
	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.InstallationSnapshot, *models.MeterSnapshot) error {
			if calls.Add(1) == 1 {
				return errors.New("store unavailable")
			}
			return nil
		}).
		Times(2)

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	assert.Error(t, c.RunCycle(context.Background()))
	assert.NoError(t, c.RunCycle(context.Background()))
	assert.True(t, c.Ready())
}

func TestRunCycleMalformedInverterContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Second inverter has disagreeing series lengths and is dropped.
	payload := `{
		"inverter": [
			[
				{"fld":"P_DC","val":"100"},{"fld":"P_DC","val":"100"},
				{"fld":"U_DC","val":"40"},{"fld":"U_DC","val":"40"},
				{"fld":"I_DC","val":"2"},{"fld":"I_DC","val":"2"},
				{"fld":"P_AC","val":"95"}
			],
			[
				{"fld":"P_DC","val":"1"},{"fld":"P_DC","val":"2"},
				{"fld":"U_DC","val":"3"},
				{"fld":"I_DC","val":"4"},{"fld":"I_DC","val":"5"}
			]
		]
	}`
	gateway := newSource(t, http.StatusOK, payload)
	meterSrv := newSource(t, http.StatusOK, meterPayload)

	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *models.InstallationSnapshot, _ *models.MeterSnapshot) error {
			require.NotNil(t, snap)
			require.Len(t, snap.Inverters, 1)
			assert.Equal(t, 95.0, snap.PowerSum)
			return nil
		})

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	require.NoError(t, c.RunCycle(context.Background()))
}

// Ensure the cycle timestamp flows into both snapshots.
func TestRunCycleTimestamps(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gateway := newSource(t, http.StatusOK, recordLivePayload)
	meterSrv := newSource(t, http.StatusOK, meterPayload)

	writer := mocks.NewMockWriter(ctrl)
	writer.EXPECT().
		WriteCycle(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *models.InstallationSnapshot, meterSnap *models.MeterSnapshot) error {
			assert.Equal(t, snap.Timestamp, meterSnap.Timestamp)
			assert.WithinDuration(t, time.Now(), snap.Timestamp, 10*time.Second)
			return nil
		})

	c := collector.New(
		api.NewDTUClient(gateway.URL, nil),
		api.NewMeterClient(meterSrv.URL, nil),
		writer,
		newTestLogger(),
	)

	require.NoError(t, c.RunCycle(context.Background()))
}

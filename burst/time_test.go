package burst_test

import (
	"testing"
	"time"

	"github.com/burst-apps-team/burstkit/burst"
	"github.com/stretchr/testify/assert"
)

func TestTimestamp(t *testing.T) {
	assert := assert.New(t)
	genesis := time.Date(2014, time.August, 11, 2, 0, 0, 0, time.UTC)
	assert.Equal(genesis.Unix(), int64(burst.GenesisUnix))

	assert.Equal(burst.Timestamp(0), burst.NewTimestamp(genesis))
	assert.Equal(burst.Timestamp(0), burst.NewTimestamp(genesis.Add(-time.Hour)))
	assert.Equal(burst.Timestamp(90),
		burst.NewTimestamp(genesis.Add(90*time.Second+500*time.Millisecond)))

	ts := burst.Timestamp(150000000)
	assert.Equal(ts, burst.NewTimestamp(ts.Time()))
	assert.Equal(genesis.Add(150000000*time.Second), ts.Time())
	assert.Equal(int64(150000000+burst.GenesisUnix), ts.Unix())
}

func TestTimestampJSON(t *testing.T) {
	assert := assert.New(t)
	data, err := burst.Timestamp(123).MarshalJSON()
	assert.NoError(err)
	assert.Equal(`123`, string(data))

	for _, json := range []string{`123`, `"123"`} {
		var ts burst.Timestamp
		if assert.NoError(ts.UnmarshalJSON([]byte(json))) {
			assert.Equal(burst.Timestamp(123), ts)
		}
	}
	var ts burst.Timestamp
	assert.Error(ts.UnmarshalJSON([]byte(`-1`)))
	assert.Error(ts.UnmarshalJSON([]byte(`4294967296`)))
}

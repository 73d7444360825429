package tps_pack

import (
	"fmt"
	"strconv"

	"github.com/modulrcloud/modulr-api/constants"
)

type TpsFrequency int

const (
	Frequency1s TpsFrequency = iota
	Frequency10s
	Frequency1m
	Frequency10m

	frequencyCount
)

type TpsInterval int

const (
	Interval10m TpsInterval = iota
	Interval1h
	Interval1d

	intervalCount
)

type frequencyRow struct {
	name    string
	seconds int64
}

type intervalRow struct {
	name      string
	frequency TpsFrequency
	window    int64
}

var frequencyTable = [frequencyCount]frequencyRow{
	Frequency1s:  {name: "1s", seconds: 1},
	Frequency10s: {name: "10s", seconds: 10},
	Frequency1m:  {name: "1m", seconds: 60},
	Frequency10m: {name: "10m", seconds: 600},
}

var intervalTable = [intervalCount]intervalRow{
	Interval10m: {name: "10m", frequency: Frequency10s, window: 600},
	Interval1h:  {name: "1h", frequency: Frequency1m, window: 3600},
	Interval1d:  {name: "1d", frequency: Frequency10m, window: 86400},
}

// Every enum value must have a row. A forgotten row would otherwise surface as a zero frequency
// and a division by zero at request time.
func init() {
	for f := TpsFrequency(0); f < frequencyCount; f++ {
		row := frequencyTable[f]
		if row.name == "" || row.seconds <= 0 {
			panic(fmt.Sprintf("tps_pack: frequency %d has no table row", f))
		}
	}
	for i := TpsInterval(0); i < intervalCount; i++ {
		row := intervalTable[i]
		if row.name == "" || row.window <= 0 || !row.frequency.valid() {
			panic(fmt.Sprintf("tps_pack: interval %d has no table row", i))
		}
		if row.window%frequencyTable[row.frequency].seconds != 0 {
			panic(fmt.Sprintf("tps_pack: interval %s window is not a multiple of its frequency", row.name))
		}
	}
}

func (f TpsFrequency) valid() bool { return f >= 0 && f < frequencyCount }
func (i TpsInterval) valid() bool  { return i >= 0 && i < intervalCount }

func (f TpsFrequency) Seconds() int64 { return frequencyTable[f].seconds }
func (f TpsFrequency) String() string { return frequencyTable[f].name }

func (i TpsInterval) String() string          { return intervalTable[i].name }
func (i TpsInterval) Frequency() TpsFrequency { return intervalTable[i].frequency }
func (i TpsInterval) WindowSeconds() int64    { return intervalTable[i].window }

// Points is the length of a history series for this interval.
func (i TpsInterval) Points() int {
	return int(i.WindowSeconds()/i.Frequency().Seconds()) + 1
}

func Frequencies() []TpsFrequency {
	out := make([]TpsFrequency, 0, frequencyCount)
	for f := TpsFrequency(0); f < frequencyCount; f++ {
		out = append(out, f)
	}
	return out
}

func Intervals() []TpsInterval {
	out := make([]TpsInterval, 0, intervalCount)
	for i := TpsInterval(0); i < intervalCount; i++ {
		out = append(out, i)
	}
	return out
}

func ParseFrequency(name string) (TpsFrequency, error) {
	for f := TpsFrequency(0); f < frequencyCount; f++ {
		if frequencyTable[f].name == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown tps frequency %q", name)
}

func ParseInterval(name string) (TpsInterval, error) {
	for i := TpsInterval(0); i < intervalCount; i++ {
		if intervalTable[i].name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown tps interval %q", name)
}

// Align floors ts to a multiple of frequencySeconds.
func Align(ts, frequencySeconds int64) int64 {
	aligned := (ts / frequencySeconds) * frequencySeconds
	if ts < 0 && ts%frequencySeconds != 0 {
		aligned -= frequencySeconds
	}
	return aligned
}

// BucketTimestamps enumerates [end-window, end] stepped by frequencySeconds, both ends included.
// end is expected to be aligned.
func BucketTimestamps(end, windowSeconds, frequencySeconds int64) []int64 {
	if frequencySeconds <= 0 || windowSeconds < 0 {
		return nil
	}

	out := make([]int64, 0, windowSeconds/frequencySeconds+1)
	for ts := end - windowSeconds; ts <= end; ts += frequencySeconds {
		out = append(out, ts)
	}
	return out
}

func BucketKey(frequencySeconds, alignedTs int64) string {
	return constants.CacheKeyPrefixBucket + strconv.FormatInt(frequencySeconds, 10) + ":" + strconv.FormatInt(alignedTs, 10)
}

func ShardTxCountKey(shardId int) string {
	return constants.CacheKeyPrefixShardTxCount + strconv.Itoa(shardId)
}

func IntervalMaxKey(interval TpsInterval) string {
	return constants.CacheKeyPrefixTpsMax + interval.String()
}

func IntervalHistoryKey(interval TpsInterval) string {
	return constants.CacheKeyPrefixTpsHistory + interval.String()
}

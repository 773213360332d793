package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		name   string
		filter RangeFilter
		want   DateRange
	}{
		{name: "empty", filter: RangeFilter{}, want: DateRange{}},
		{name: "dates", filter: RangeFilter{Start: "2024-06-01", End: "2024-06-30"}, want: DateRange{From: "2024-06-01", To: "2024-06-30"}},
		{name: "date-times", filter: RangeFilter{Start: "2024-06-01T00:00:00Z", End: "2024-07-01T00:00:00-04:00"}, want: DateRange{From: "2024-06-01", To: "2024-07-01"}},
		{name: "space separated", filter: RangeFilter{Start: "2024-06-01 10:00"}, want: DateRange{From: "2024-06-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRange(tt.filter)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRange_Invalid(t *testing.T) {
	for _, value := range []string{"tomorrow", "2024-6-1", "2024-02-30", "2024-06-01X"} {
		_, err := NormalizeRange(RangeFilter{Start: value})
		var verr ValidationError
		require.ErrorAs(t, err, &verr, value)
	}
}

func TestNormalizeEventInput_Trims(t *testing.T) {
	got, err := NormalizeEventInput(EventInput{Title: "  Picnic ", Date: " 2024-06-01 ", StartTime: " 09:30"})
	require.NoError(t, err)
	require.Equal(t, "Picnic", got.Title)
	require.Equal(t, "2024-06-01", got.Date)
	require.Equal(t, "09:30", got.StartTime)
}

func TestNormalizeVolunteerName(t *testing.T) {
	name, err := NormalizeVolunteerName("  Jo ")
	require.NoError(t, err)
	require.Equal(t, "Jo", name)

	name, err = NormalizeVolunteerName(" Sam <3 ")
	require.NoError(t, err)
	require.Equal(t, "Sam <3", name)

	_, err = NormalizeVolunteerName("Sam <admin>")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)
}

func TestValidationError_Message(t *testing.T) {
	require.Equal(t, "invalid date: bad", ValidationError{Field: "date", Message: "bad"}.Error())
	require.Equal(t, "bad", ValidationError{Message: "bad"}.Error())
}

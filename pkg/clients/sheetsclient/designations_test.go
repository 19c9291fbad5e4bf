package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTabTitle(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		endDate   string
		want      string
		wantErr   bool
	}{
		{
			name:      "single day",
			startDate: "2025-03-15",
			endDate:   "2025-03-15",
			want:      "Sat Mar 15 2025 - Sat Mar 15 2025",
		},
		{
			name:      "weekend",
			startDate: "2025-03-15",
			endDate:   "2025-03-16",
			want:      "Sat Mar 15 2025 - Sun Mar 16 2025",
		},
		{
			name:      "invalid start date",
			startDate: "invalid",
			endDate:   "2025-03-16",
			wantErr:   true,
		},
		{
			name:      "end before start",
			startDate: "2025-03-16",
			endDate:   "2025-03-15",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generateTabTitle(tt.startDate, tt.endDate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func testTable() *DesignationTable {
	return &DesignationTable{
		Title:     "Designations - Northern Basketball Federation",
		StartDate: "2025-03-15",
		EndDate:   "2025-03-16",
		Rows: []DesignationRow{
			{MatchID: "m1", Date: "2025-03-15", Slot: 1, Venue: "North Arena", Category: "Senior",
				HomeTeam: "Lions", AwayTeam: "Tigers", RefereeA: "Ana Ruiz (notified)", RefereeB: "Ben Ode (tentative)"},
			{MatchID: "m2", Date: "2025-03-16", Slot: 3, Venue: "South Hall", Category: "U14",
				HomeTeam: "Hawks", AwayTeam: "Owls", RefereeA: "Cy Lee (accepted)"},
		},
	}
}

func TestBuildSheetValues_NewTab(t *testing.T) {
	values, err := buildSheetValues(nil, testTable())
	require.NoError(t, err)

	require.Len(t, values, 5)
	assert.Equal(t, []interface{}{"Designations - Northern Basketball Federation"}, values[0])
	assert.Empty(t, values[1])
	assert.Equal(t, []interface{}{"Match", "Date", "Slot", "Venue", "Category", "Home", "Away", "Referee A", "Referee B", "Scorer"}, values[2])
	assert.Equal(t, []interface{}{"m1", "2025-03-15", 1, "North Arena", "Senior", "Lions", "Tigers", "Ana Ruiz (notified)", "Ben Ode (tentative)", ""}, values[3])
	assert.Equal(t, "m2", values[4][0])
}

func TestBuildSheetValues_PreservesExtraColumnsByMatch(t *testing.T) {
	existing := [][]interface{}{
		{"Old title"},
		{},
		{"Match", "Date", "Notes", "Slot", "Venue", "Category", "Home", "Away", "Referee A", "Referee B", "Scorer", "Table"},
		{"m2", "2025-03-16", "Bring ball", 3},
		{"m1", "2025-03-15", "Livestream", 1, "", "", "", "", "", "", "", "T1"},
		{"m9", "2025-03-15", "Dropped match note"},
	}

	values, err := buildSheetValues(existing, testTable())
	require.NoError(t, err)

	header := values[2]
	require.Len(t, header, 12)
	assert.Equal(t, "Notes", header[10])
	assert.Equal(t, "Table", header[11])

	require.Len(t, values, 5, "rows follow the table, not the old tab")
	m1 := values[3]
	assert.Equal(t, "m1", m1[0])
	assert.Equal(t, "Ana Ruiz (notified)", m1[7])
	assert.Equal(t, "Livestream", m1[10])
	assert.Equal(t, "T1", m1[11])

	m2 := values[4]
	assert.Equal(t, "Bring ball", m2[10])
	assert.Equal(t, "", m2[11], "missing trailing cells become empty")
}

func TestBuildSheetValues_ExistingTabWithoutMatchColumn(t *testing.T) {
	existing := [][]interface{}{{}, {}, {"Date", "Team lead"}}

	_, err := buildSheetValues(existing, testTable())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Match")
}

func TestFindColumnIndex(t *testing.T) {
	header := []interface{}{"Match", "Date", 42, "Referee A"}

	assert.Equal(t, 0, findColumnIndex(header, "Match"))
	assert.Equal(t, 3, findColumnIndex(header, "Referee A"))
	assert.Equal(t, -1, findColumnIndex(header, "Scorer"))
}

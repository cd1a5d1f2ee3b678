package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizPoints(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		correct int
		want    int64
	}{
		{"perfect score earns bonus", 5, 5, 10},
		{"partial score", 5, 3, 6},
		{"zero correct still earns completion", 5, 0, 3},
		{"empty quiz gets no perfect bonus", 0, 0, 3},
		{"single perfect", 1, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuizPoints(tt.total, tt.correct))
		})
	}
}

func TestAttemptIDForKey(t *testing.T) {
	a := AttemptIDForKey("u1", "k1")
	assert.Equal(t, a, AttemptIDForKey("u1", "k1"))
	assert.NotEqual(t, a, AttemptIDForKey("u2", "k1"))
	assert.NotEqual(t, a, AttemptIDForKey("u1", "k2"))
	assert.Len(t, a, len("att_")+26)
}

func TestQuizAttempt_CorrectCount(t *testing.T) {
	a := QuizAttempt{Items: []QuizItem{{IsCorrect: true}, {IsCorrect: false}, {IsCorrect: true}}}
	assert.Equal(t, 2, a.CorrectCount())
}

func TestDiffMinutes(t *testing.T) {
	door := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	activation := door.Add(47 * time.Minute)

	got := DiffMinutes(&activation, &door)
	require.NotNil(t, got)
	assert.Equal(t, int64(47), *got)

	// 29.5s rounds down, 30s rounds up
	almost := door.Add(29*time.Second + 500*time.Millisecond)
	assert.Equal(t, int64(0), *DiffMinutes(&almost, &door))
	half := door.Add(30 * time.Second)
	assert.Equal(t, int64(1), *DiffMinutes(&half, &door))

	assert.Nil(t, DiffMinutes(nil, &door))
	assert.Nil(t, DiffMinutes(&activation, nil))
}

func TestClinicalEvent_Derive(t *testing.T) {
	ecg := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	activation := ecg.Add(12 * time.Minute)

	ce := ClinicalEvent{ECGTime: &ecg, ActivationTime: &activation}
	ce.OutcomeAdjudication.IsTrueOMI = true
	ce.Derive()
	assert.True(t, ce.Activation.Activated)
	assert.True(t, ce.Activation.ActivationAppropriate)
	assert.Nil(t, ce.TimingDerived.DoorToActivationMinutes)
	require.NotNil(t, ce.TimingDerived.ECGToActivationMinutes)
	assert.Equal(t, int64(12), *ce.TimingDerived.ECGToActivationMinutes)
	assert.False(t, ce.FalsePositive())

	fp := ClinicalEvent{ActivationTime: &activation}
	fp.Derive()
	assert.True(t, fp.Activation.Activated)
	assert.False(t, fp.Activation.ActivationAppropriate)
	assert.True(t, fp.FalsePositive())

	none := ClinicalEvent{}
	none.OutcomeAdjudication.IsTrueOMI = true
	none.Derive()
	assert.False(t, none.Activation.Activated)
	assert.False(t, none.Activation.ActivationAppropriate)
}

func TestFlexBool(t *testing.T) {
	var row struct {
		A FlexBool `json:"a"`
		B FlexBool `json:"b"`
		C FlexBool `json:"c"`
		D FlexBool `json:"d"`
		E FlexBool `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a":true,"b":"true","c":"false","d":1,"e":"TRUE"}`), &row)
	require.NoError(t, err)
	assert.True(t, bool(row.A))
	assert.True(t, bool(row.B))
	assert.False(t, bool(row.C))
	assert.False(t, bool(row.D))
	assert.False(t, bool(row.E))
}

func TestTruthy_OnlyLiteralTrue(t *testing.T) {
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("true"))
	assert.True(t, Truthy(FlexBool(true)))
	assert.False(t, Truthy(" true"))
	assert.False(t, Truthy("true "))
	assert.False(t, Truthy("yes"))
	assert.False(t, Truthy(nil))
}

func TestContentReadStatus_UnionIsMonotonic(t *testing.T) {
	var s ContentReadStatus
	require.NoError(t, s.Union(FieldCasesRead, []string{"c1", "c2"}))
	require.NoError(t, s.Union(FieldCasesRead, []string{"c1"}))
	assert.Equal(t, []string{"c1", "c2"}, s.CasesRead)
	assert.True(t, s.HasRead(ContentCase, "c1"))
	assert.False(t, s.HasRead(ContentPaper, "c1"))
	assert.ErrorIs(t, s.Union("bogus", []string{"x"}), ErrUnknownField)

	var missing *ContentReadStatus
	assert.False(t, missing.HasRead(ContentCase, "c1"))
}

func TestPointsStats_ApplyIncrement(t *testing.T) {
	var p PointsStats
	b := NewBatch().AwardPoints("u1", BucketContent, 1).AwardPoints("u1", BucketQuiz, 10)
	for _, m := range b.Mutations() {
		require.NoError(t, p.ApplyIncrement(m.Field, m.Delta))
	}
	assert.Equal(t, int64(11), p.TotalPoints)
	assert.Equal(t, int64(1), p.PointsBreakdown.ContentPoints)
	assert.Equal(t, int64(10), p.PointsBreakdown.QuizPoints)
	assert.True(t, p.Balanced())
	assert.ErrorIs(t, p.ApplyIncrement("pointsBreakdown.unknown", 1), ErrUnknownField)
}

func TestBatch_Validate(t *testing.T) {
	b := NewBatch()
	for i := 0; i < MaxBatchMutations; i++ {
		b.Increment(CollectionCaseStats, "c", FieldTotalAnswered, 1)
	}
	assert.NoError(t, b.Validate())
	b.Increment(CollectionCaseStats, "c", FieldTotalAnswered, 1)
	assert.ErrorIs(t, b.Validate(), ErrBatchTooLarge)
}

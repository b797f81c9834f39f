package spacedrep

import (
	"math"
	"testing"
	"time"

	"github.com/saurav/teachback/internal/validation"
)

const epsilon = 0.0001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestApply_FirstSuccess(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)

	if err := it.Apply(4, now); err != nil {
		t.Fatal(err)
	}
	if it.IntervalDays != 1 || it.Repetitions != 1 {
		t.Errorf("after first success: interval=%d reps=%d, want 1/1", it.IntervalDays, it.Repetitions)
	}
	if !it.NextReview.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("next review = %v, want now+1d", it.NextReview)
	}
}

func TestApply_SecondSuccessIntervalSix(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)
	_ = it.Apply(4, now)
	if err := it.Apply(4, now.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	if it.IntervalDays != 6 || it.Repetitions != 2 {
		t.Errorf("after second success: interval=%d reps=%d, want 6/2", it.IntervalDays, it.Repetitions)
	}
}

func TestApply_ThirdSuccessUsesEaseFactor(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)
	_ = it.Apply(5, now)
	_ = it.Apply(5, now)

	ef := it.EaseFactor
	if err := it.Apply(5, now); err != nil {
		t.Fatal(err)
	}
	want := int(math.Round(6 * ef))
	if it.IntervalDays != want {
		t.Errorf("interval = %d, want round(6*%f)=%d", it.IntervalDays, ef, want)
	}
}

func TestApply_FailureResetsStreak(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)
	for i := 0; i < 8; i++ {
		if err := it.Apply(5, now); err != nil {
			t.Fatal(err)
		}
	}
	if it.Repetitions != 8 || it.IntervalDays < 6 {
		t.Fatalf("setup failed: reps=%d interval=%d", it.Repetitions, it.IntervalDays)
	}

	if err := it.Apply(2, now); err != nil {
		t.Fatal(err)
	}
	if it.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0 after failure", it.Repetitions)
	}
	if it.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1 after failure", it.IntervalDays)
	}
}

func TestApply_EaseFactorFloor(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)
	for i := 0; i < 20; i++ {
		if err := it.Apply(0, now); err != nil {
			t.Fatal(err)
		}
		if it.EaseFactor < MinEaseFactor-epsilon {
			t.Fatalf("ease factor %f fell below %f", it.EaseFactor, MinEaseFactor)
		}
	}
	if !almostEqual(it.EaseFactor, MinEaseFactor) {
		t.Errorf("ease factor = %f, want pinned at %f", it.EaseFactor, MinEaseFactor)
	}
}

func TestApply_EaseFactorFormula(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)
	// q=5: EF += 0.1
	if err := it.Apply(5, now); err != nil {
		t.Fatal(err)
	}
	if !almostEqual(it.EaseFactor, 2.6) {
		t.Errorf("EF after q=5 = %f, want 2.6", it.EaseFactor)
	}
	// q=3: EF += 0.1 - 2*(0.08+2*0.02) = -0.14
	if err := it.Apply(3, now); err != nil {
		t.Fatal(err)
	}
	if !almostEqual(it.EaseFactor, 2.46) {
		t.Errorf("EF after q=3 = %f, want 2.46", it.EaseFactor)
	}
}

func TestApply_QualityRange(t *testing.T) {
	it := NewItem("recursion", time.Now())
	for _, q := range []int{-1, 6} {
		if err := it.Apply(q, time.Now()); !validation.Is(err) {
			t.Errorf("quality %d: want validation error, got %v", q, err)
		}
	}
}

func TestIntervalInvariant(t *testing.T) {
	now := time.Now()
	it := NewItem("recursion", now)
	qualities := []int{4, 5, 2, 3, 5, 0, 4, 4, 5, 1, 3}
	for _, q := range qualities {
		if err := it.Apply(q, now); err != nil {
			t.Fatal(err)
		}
		if it.Repetitions > 0 && it.IntervalDays < 1 {
			t.Fatalf("interval %d < 1 with repetitions %d", it.IntervalDays, it.Repetitions)
		}
	}
}

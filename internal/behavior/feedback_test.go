package behavior

import (
	"reflect"
	"testing"
)

func TestBuildFeedback_PriorityOrder(t *testing.T) {
	cases := []struct {
		name      string
		posture   int
		slouching bool
		level     HandLevel
		eye       int
		want      []string
	}{
		{
			name:    "clean frame earns one affirmation",
			posture: 90, level: HandCalm, eye: 90,
			want: []string{feedbackAffirm},
		},
		{
			name:    "slouching wins over low posture",
			posture: 30, slouching: true, level: HandCalm, eye: 90,
			want: []string{feedbackSlouching},
		},
		{
			name:    "low posture without slouch",
			posture: 59, level: HandCalm, eye: 90,
			want: []string{feedbackLowPosture},
		},
		{
			name:    "nervous wins over moderate",
			posture: 90, level: HandNervous, eye: 90,
			want: []string{feedbackNervous},
		},
		{
			name:    "moderate gets its own message",
			posture: 90, level: HandModerate, eye: 90,
			want: []string{feedbackModerate},
		},
		{
			name:    "low eye contact",
			posture: 90, level: HandCalm, eye: 49,
			want: []string{feedbackEyeContact},
		},
		{
			name:    "everything wrong, slouch message first",
			posture: 30, slouching: true, level: HandNervous, eye: 20,
			want: []string{feedbackSlouching, feedbackNervous, feedbackEyeContact},
		},
		{
			name:    "boundary scores stay positive",
			posture: 60, level: HandCalm, eye: 50,
			want: []string{feedbackAffirm},
		},
	}

	for _, tc := range cases {
		got := buildFeedback(tc.posture, tc.slouching, tc.level, tc.eye)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBuildFeedback_NeverEmpty(t *testing.T) {
	for _, level := range []HandLevel{HandCalm, HandModerate, HandNervous} {
		for _, eye := range []int{0, 50, 100} {
			got := buildFeedback(100, false, level, eye)
			if len(got) == 0 {
				t.Errorf("level %q eye %d: feedback empty, want at least one message", level, eye)
			}
		}
	}
}

package ffmpeg

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func testProfile() Profile {
	return Profile{
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          23,
		PixelFormat:  "yuv420p",
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		SampleRate:   48000,
		Channels:     2,
	}
}

func TestTrimArgs(t *testing.T) {
	copyArgs := TrimCopyArgs("in.mp4", "out.mp4", 2.5)
	wantCopy := []string{"-i", "in.mp4", "-ss", "2.5", "-c", "copy", "out.mp4"}
	if !reflect.DeepEqual(copyArgs, wantCopy) {
		t.Fatalf("copy args = %v, want %v", copyArgs, wantCopy)
	}

	profile := testProfile()
	profile.CRF = 20
	reencode := TrimReencodeArgs("in.mp4", "out.mp4", 1.001, profile)
	if reencode[0] != "-ss" || reencode[1] != "1.001" || reencode[2] != "-i" {
		t.Fatalf("expected input seek before -i, got %v", reencode)
	}
	joined := strings.Join(reencode, " ")
	for _, want := range []string{"-c:v libx264", "-crf 20", "-c:a aac", "-b:a 192k"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("reencode args missing %q: %s", want, joined)
		}
	}
	if reencode[len(reencode)-1] != "out.mp4" {
		t.Fatalf("output must be last, got %v", reencode)
	}
}

func TestConcatArgs(t *testing.T) {
	got := ConcatArgs("/out/file_list.txt", "/out/final.mp4")
	want := []string{"-f", "concat", "-safe", "0", "-i", "/out/file_list.txt", "-c", "copy", "/out/final.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("concat args = %v, want %v", got, want)
	}
}

func TestAlignFilterWithOriginalAudio(t *testing.T) {
	filter, err := AlignFilter(AlignSpec{
		PTSFactor:        2,
		HasOriginalAudio: true,
		VideoVolume:      0.05,
		AudioVolume:      4,
	})
	if err != nil {
		t.Fatalf("AlignFilter: %v", err)
	}
	want := "[0:v]setpts=PTS*2[v_out];" +
		"[0:a]atempo=0.5,volume=0.05[a_orig];" +
		"[1:a]volume=4[a_ext];" +
		"[a_orig][a_ext]amix=inputs=2:duration=longest[a_out]"
	if filter != want {
		t.Fatalf("filter =\n%s\nwant\n%s", filter, want)
	}
}

func TestAlignFilterNarrationOnly(t *testing.T) {
	filter, err := AlignFilter(AlignSpec{PTSFactor: 0.5, AudioVolume: 4})
	if err != nil {
		t.Fatalf("AlignFilter: %v", err)
	}
	if filter != "[0:v]setpts=PTS*0.5[v_out];[1:a]volume=4[a_out]" {
		t.Fatalf("unexpected filter %q", filter)
	}
	if strings.Contains(filter, "[0:a]") {
		t.Fatal("silent clip must not reference clip audio")
	}
}

func TestAlignFilterRejectsInvalidFactor(t *testing.T) {
	for _, factor := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := AlignFilter(AlignSpec{PTSFactor: factor}); err == nil {
			t.Fatalf("expected error for factor %v", factor)
		}
	}
}

func TestAlignArgs(t *testing.T) {
	args, err := AlignArgs(AlignSpec{
		Video:       "clip.mp4",
		Narration:   "voice.wav",
		Output:      "000_clip.mp4",
		PTSFactor:   1,
		AudioVolume: 4,
		Profile:     testProfile(),
	})
	if err != nil {
		t.Fatalf("AlignArgs: %v", err)
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-i clip.mp4 -i voice.wav -filter_complex",
		"-map [v_out] -map [a_out]",
		"-c:v libx264 -preset fast -crf 23 -pix_fmt yuv420p",
		"-c:a aac -b:a 192k -ac 2 -ar 48000",
		"-shortest 000_clip.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("align args missing %q:\n%s", want, joined)
		}
	}
}

func TestAtempoChainStagesStayInRange(t *testing.T) {
	for _, factor := range []float64{0.01, 0.1, 0.3, 0.5, 0.75, 1.5, 2, 3, 7.3, 40} {
		stages, err := AtempoChain(factor)
		if err != nil {
			t.Fatalf("AtempoChain(%v): %v", factor, err)
		}
		product := 1.0
		for _, stage := range stages {
			if stage < 0.5 || stage > 2.0 {
				t.Fatalf("factor %v produced out-of-range stage %v", factor, stage)
			}
			product *= stage
		}
		if math.Abs(product-factor) > 1e-9*factor {
			t.Fatalf("factor %v: product %v", factor, product)
		}
	}
}

func TestAtempoFilter(t *testing.T) {
	tests := []struct {
		factor float64
		want   string
	}{
		{1, "atempo=1.0"},
		{1.0005, "atempo=1.0"},
		{0.25, "atempo=0.5,atempo=0.5"},
		{5, "atempo=2.0,atempo=2.0,atempo=1.25"},
		{1.5, "atempo=1.5"},
	}
	for _, tt := range tests {
		got, err := AtempoFilter(tt.factor)
		if err != nil {
			t.Fatalf("AtempoFilter(%v): %v", tt.factor, err)
		}
		if got != tt.want {
			t.Fatalf("AtempoFilter(%v) = %q, want %q", tt.factor, got, tt.want)
		}
	}
	if _, err := AtempoFilter(0); err == nil {
		t.Fatal("expected error for zero factor")
	}
}

func TestAtempoFilterKeepsProductPrecision(t *testing.T) {
	for _, factor := range []float64{123.456789, 0.0123456789, 3.3333333333, 7.1} {
		filter, err := AtempoFilter(factor)
		if err != nil {
			t.Fatalf("AtempoFilter(%v): %v", factor, err)
		}
		product := 1.0
		for _, stage := range strings.Split(filter, ",") {
			v, err := strconv.ParseFloat(strings.TrimPrefix(stage, "atempo="), 64)
			if err != nil {
				t.Fatalf("stage %q: %v", stage, err)
			}
			product *= v
		}
		if math.Abs(product-factor) > 1e-6 {
			t.Fatalf("AtempoFilter(%v) = %q, product %v", factor, filter, product)
		}
	}
}

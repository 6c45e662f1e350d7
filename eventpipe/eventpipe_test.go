package eventpipe

import (
	"reflect"
	"testing"

	"smartkiosk/swipe"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr bool
	}{
		{"key a", Command{Kind: KindKeys, Keys: []swipe.Key{"a"}}, false},
		{"key Enter", Command{Kind: KindKeys, Keys: []swipe.Key{swipe.KeyEnter}}, false},
		{"key space", Command{Kind: KindKeys, Keys: []swipe.Key{" "}}, false},
		{"type ab c", Command{Kind: KindKeys, Keys: []swipe.Key{"a", "b", " ", "c"}}, false},
		{"swipe %B1?", Command{Kind: KindKeys, Keys: []swipe.Key{"%", "B", "1", "?", swipe.KeyEnter}}, false},
		{"LINK 42", Command{Kind: KindLink, UserID: 42}, false},
		{"unlink", Command{Kind: KindUnlink}, false},
		{"refresh", Command{Kind: KindRefresh}, false},
		{"wake", Command{Kind: KindWake}, false},
		{"key", Command{}, true},
		{"type", Command{}, true},
		{"link", Command{}, true},
		{"link bob", Command{}, true},
		{"link -1", Command{}, true},
		{"rfid 1234", Command{}, true},
		{"   ", Command{}, true},
	}
	for _, tt := range tests {
		got, err := parseLine(tt.line)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLine(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

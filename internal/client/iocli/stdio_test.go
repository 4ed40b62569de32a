package iocli

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func TestPrintlnAndPrintf(t *testing.T) {
	var buf bytes.Buffer
	stdio := &Stdio{in: os.Stdin, out: &buf}

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s", 1, "abc")
	_, err := stdio.Write([]byte("!"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc!", buf.String())
}

// Тест ReadInput: читаем из pipe вместо os.Stdin
func TestReadInput(t *testing.T) {
	input := "user input\n"
	r, w, err := os.Pipe()
	require.NoError(t, err)

	// Пишем в pipe в отдельной горутине, имитируя ввод пользователя
	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()

	var out bytes.Buffer
	stdio := &Stdio{in: r, out: &out}
	result, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(input), result)
	assert.Equal(t, "Prompt: ", out.String())

	// pipe не является терминалом
	assert.False(t, stdio.IsInteractive())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		readErr     error
		name        string
		answer      string
		interactive bool
		want        bool
		wantErr     bool
	}{
		{name: "yes", answer: "y", interactive: true, want: true},
		{name: "full yes", answer: "YES", interactive: true, want: true},
		{name: "no", answer: "n", interactive: true},
		{name: "empty", answer: "", interactive: true},
		{name: "not a terminal", answer: "y", interactive: false},
		{name: "read error", readErr: errors.New("closed"), interactive: true, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &IOMock{
				IsInteractiveFunc: func() bool { return tt.interactive },
				ReadInputFunc: func(prompt string) (string, error) {
					return tt.answer, tt.readErr
				},
			}

			got, err := Confirm(mock, "Restore?")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if tt.interactive {
				require.Len(t, mock.ReadInputCalls(), 1)
				assert.Equal(t, "Restore? [y/N]: ", mock.ReadInputCalls()[0].Prompt)
			} else {
				assert.Empty(t, mock.ReadInputCalls())
			}
		})
	}
}

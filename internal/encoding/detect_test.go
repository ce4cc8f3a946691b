package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassioalves/controle-financeiro-semanal/internal/encoding"
)

func TestNewReader_UTF8Passthrough(t *testing.T) {
	input := "data;descricao;valor\n2024-06-05;Cafés da semana;12,50\n"

	r, err := encoding.NewReader(bytes.NewReader([]byte(input)))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestNewReader_UTF8BOMStripped(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("data;descricao;valor\n")...)

	r, err := encoding.NewReader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "data;descricao;valor\n", string(got))
}

func TestNewReader_Windows1252(t *testing.T) {
	// "descrição" with ç = 0xE7 and ã = 0xE3 in Windows-1252.
	input := []byte{
		'd', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
		'v', 'a', 'l', 'o', 'r', '\n',
	}

	r, err := encoding.NewReader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "descrição;valor\n", string(got))
}

func TestNewReader_UTF16LE(t *testing.T) {
	text := "data;valor\n"

	input := []byte{0xFF, 0xFE}
	for _, r := range text {
		input = append(input, byte(r), 0x00)
	}

	r, err := encoding.NewReader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, text, string(got))
}

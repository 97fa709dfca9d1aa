// Package codec implements the Artifact Codec: command-name escaping and
// output compression, grounded byte-for-byte on netcat.py's
// encode_command/decode_command/compress_device_data.
package codec

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/sebmaj/netcat-go/internal/snapshot"
)

// digitsToLetters / lettersToDigits implement the original's
// str.maketrans("1234567890", "ghijklmnop"): hex-encoded command names are
// all-digit-free afterward, so they're safe as document-store keys that
// disallow dots or digit-leading identifiers.
var digitsToLetters = strings.NewReplacer(
	"1", "g", "2", "h", "3", "i", "4", "j", "5", "k",
	"6", "l", "7", "m", "8", "n", "9", "o", "0", "p",
)

var lettersToDigits = strings.NewReplacer(
	"g", "1", "h", "2", "i", "3", "j", "4", "k", "5",
	"l", "6", "m", "7", "n", "8", "o", "9", "p", "0",
)

// EncodeCommandName escapes a command string into a storage-safe,
// all-alphabetic token.
func EncodeCommandName(s string) string {
	hexStr := hex.EncodeToString([]byte(s))
	return digitsToLetters.Replace(hexStr)
}

// DecodeCommandName reverses EncodeCommandName.
func DecodeCommandName(encoded string) (string, error) {
	hexStr := lettersToDigits.Replace(encoded)
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", fmt.Errorf("decoding command name %q: %w", encoded, err)
	}
	return string(raw), nil
}

var zstdEncoder, _ = zstd.NewWriter(nil)

// CompressOutput compresses s with zstd (substituting for the original's
// bz2) then encodes the result with ascii85 (substituting for base85) so
// it fits a printable text field.
func CompressOutput(s string) string {
	compressed := zstdEncoder.EncodeAll([]byte(s), nil)

	var buf bytes.Buffer
	enc := ascii85.NewEncoder(&buf)
	_, _ = enc.Write(compressed)
	_ = enc.Close()
	return buf.String()
}

// DecompressOutput reverses CompressOutput.
func DecompressOutput(encoded string) (string, error) {
	dec := ascii85.NewDecoder(strings.NewReader(encoded))
	compressed, err := io.ReadAll(dec)
	if err != nil {
		return "", fmt.Errorf("ascii85 decoding output: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return "", err
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", fmt.Errorf("zstd decompressing output: %w", err)
	}
	return string(raw), nil
}

// CompressedCommandOutput is the wire/storage form of one captured
// command: an escaped command name and a compressed, base-encoded output.
type CompressedCommandOutput struct {
	EncodedCommand   string `json:"command"`
	CompressedOutput string `json:"output"`
}

// CompressedFormatOutputs is the wire form of one FormatOutputs.
type CompressedFormatOutputs struct {
	FormatName string                    `json:"format_name"`
	Commands   []CompressedCommandOutput `json:"commands"`
}

// CompressedSnapshot is the wire/storage form of a DeviceSnapshot: lossless
// round trip with snapshot.DeviceSnapshot is required.
type CompressedSnapshot struct {
	SnapshotTimestamp int64                     `json:"snapshot_timestamp"`
	DeviceName        string                    `json:"device_name"`
	DeviceType        string                    `json:"device_type"`
	Formats           []CompressedFormatOutputs `json:"formats"`
}

// CompressSnapshot converts a DeviceSnapshot to its compressed wire form.
func CompressSnapshot(snap *snapshot.DeviceSnapshot) *CompressedSnapshot {
	out := &CompressedSnapshot{
		SnapshotTimestamp: snap.SnapshotTimestamp,
		DeviceName:        snap.DeviceName,
		DeviceType:        snap.DeviceType,
	}

	for _, format := range snap.Formats {
		cf := CompressedFormatOutputs{FormatName: format.FormatName}
		for _, c := range format.Commands {
			cf.Commands = append(cf.Commands, CompressedCommandOutput{
				EncodedCommand:   EncodeCommandName(c.Command),
				CompressedOutput: CompressOutput(c.Output),
			})
		}
		out.Formats = append(out.Formats, cf)
	}

	return out
}

// DecompressSnapshot reverses CompressSnapshot. Round trip with
// CompressSnapshot must be structurally and byte-exactly equal to the
// original DeviceSnapshot.
func DecompressSnapshot(c *CompressedSnapshot) (*snapshot.DeviceSnapshot, error) {
	out := &snapshot.DeviceSnapshot{
		SnapshotTimestamp: c.SnapshotTimestamp,
		DeviceName:        c.DeviceName,
		DeviceType:        c.DeviceType,
	}

	for _, cf := range c.Formats {
		fo := snapshot.FormatOutputs{FormatName: cf.FormatName}
		for _, cc := range cf.Commands {
			command, err := DecodeCommandName(cc.EncodedCommand)
			if err != nil {
				return nil, err
			}
			output, err := DecompressOutput(cc.CompressedOutput)
			if err != nil {
				return nil, err
			}
			fo.Commands = append(fo.Commands, snapshot.CommandOutput{Command: command, Output: output})
		}
		out.Formats = append(out.Formats, fo)
	}

	return out, nil
}

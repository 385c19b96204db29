// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/optoscholar/pkg/types"
)

func TestFileSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "library.json")
	slot := &FileSlot{Path: path}
	ctx := context.Background()

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[1]`)))
	require.NoError(t, slot.Write(ctx, []byte(`[2]`)))

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestSQLiteSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optoscholar.db")
	ctx := context.Background()

	a, err := NewSQLiteSlot(path, DefaultKey)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSQLiteSlot(path, "other")
	require.NoError(t, err)
	defer b.Close()

	_, err = a.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, a.Write(ctx, []byte(`["first"]`)))
	require.NoError(t, a.Write(ctx, []byte(`["second"]`)))
	require.NoError(t, b.Write(ctx, []byte(`["other"]`)))

	got, err := a.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["second"]`, string(got))

	got, err = b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `["other"]`, string(got))
}

func TestSQLiteSlotBacksStore(t *testing.T) {
	slot, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "lib.db"), DefaultKey)
	require.NoError(t, err)
	defer slot.Close()

	s := Open(context.Background(), slot, nil, nil)
	s.Toggle(article("1"))
	s.Toggle(article("2"))
	s.Close()

	reopened := Open(context.Background(), slot, nil, nil)
	defer reopened.Close()
	assert.Equal(t, []string{"1", "2"}, ids(reopened.Articles()))
}

// fakeS3 keeps objects in a map keyed by bucket/key.
type fakeS3 struct {
	objects map[string][]byte
	getErr  error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Slot(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	slot := NewS3Slot(fake, "bucket", DefaultKey)
	ctx := context.Background()

	_, err := slot.Read(ctx)
	assert.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Write(ctx, []byte(`[]`)))
	assert.Equal(t, []byte(`[]`), fake.objects["bucket/"+DefaultKey])

	data, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	fake.getErr = errors.New("access denied")
	_, err = slot.Read(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotEmpty)
}

func TestOpenSlot(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	slot, closeFn, err := OpenSlot(ctx, types.LibraryConfig{Path: filepath.Join(dir, "lib.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileSlot{}, slot)
	assert.NoError(t, closeFn())

	slot, closeFn, err = OpenSlot(ctx, types.LibraryConfig{Backend: types.SlotSQLite, Path: filepath.Join(dir, "lib.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteSlot{}, slot)
	assert.NoError(t, closeFn())

	_, _, err = OpenSlot(ctx, types.LibraryConfig{Backend: types.SlotS3})
	assert.Error(t, err, "s3 without a bucket")

	_, _, err = OpenSlot(ctx, types.LibraryConfig{Backend: "floppy"})
	assert.Error(t, err)
}

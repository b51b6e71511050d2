package host

import (
	"testing"

	"github.com/wippyai/wit-bindgen-go/errors"
)

func TestWrapMemory_Nil(t *testing.T) {
	if WrapMemory(nil) != nil {
		t.Error("WrapMemory(nil) should be nil")
	}
}

func TestMemory(t *testing.T) {
	ctx, r := newRuntime(t)
	mod, err := r.Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	mem := WrapMemory(mod.Memory())

	if got := mem.Size(); got != 65536 {
		t.Fatalf("Size = %d, want 65536", got)
	}

	if err := mem.WriteU32(16, 0xdeadbeef); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if v, err := mem.ReadU32(16); err != nil || v != 0xdeadbeef {
		t.Errorf("ReadU32 = 0x%x, %v", v, err)
	}
	if v, err := mem.ReadU16(16); err != nil || v != 0xbeef {
		t.Errorf("ReadU16 = 0x%x, %v", v, err)
	}
	if v, err := mem.ReadU8(19); err != nil || v != 0xde {
		t.Errorf("ReadU8 = 0x%x, %v", v, err)
	}
	if err := mem.WriteU8(24, 7); err != nil {
		t.Fatalf("WriteU8: %v", err)
	}
	if v, err := mem.ReadU64(24); err != nil || v != 7 {
		t.Errorf("ReadU64 = %d, %v", v, err)
	}

	if err := mem.Write(32, []byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if data, err := mem.Read(32, 3); err != nil || string(data) != "abc" {
		t.Errorf("Read = %q, %v", data, err)
	}
}

func TestMemory_OutOfBounds(t *testing.T) {
	ctx, r := newRuntime(t)
	mod, err := r.Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	mem := WrapMemory(mod.Memory())

	_, err = mem.Read(65530, 10)
	wantKind(t, err, errors.KindOutOfBounds)
	_, err = mem.ReadU64(65532)
	wantKind(t, err, errors.KindOutOfBounds)
	wantKind(t, mem.WriteU32(65534, 1), errors.KindOutOfBounds)
	wantKind(t, mem.Write(65535, []byte("xy")), errors.KindOutOfBounds)
}

package arena

import "unsafe"

func sizeOf[T any](zero T) int {
	return int(unsafe.Sizeof(zero))
}

func ptrOf(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(buf))
}

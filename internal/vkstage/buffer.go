package vkstage

import (
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer pairs a vulkan buffer with its backing memory.
type Buffer struct {
	Buf  vk.Buffer
	Mem  vk.DeviceMemory
	Size int
}

func (c *Context) createBuffer(size int, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (Buffer, error) {
	var buf vk.Buffer
	if ret := vk.CreateBuffer(c.Device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf); ret != vk.Success {
		return Buffer{}, fmt.Errorf("create buffer (%d bytes): %w", size, vk.Error(ret))
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.Device, buf, &reqs)
	reqs.Deref()

	typeIndex, err := c.findMemoryType(reqs.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(c.Device, buf, nil)
		return Buffer{}, err
	}

	var mem vk.DeviceMemory
	if ret := vk.AllocateMemory(c.Device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}, nil, &mem); ret != vk.Success {
		vk.DestroyBuffer(c.Device, buf, nil)
		return Buffer{}, fmt.Errorf("allocate %d bytes: %w", size, vk.Error(ret))
	}
	if ret := vk.BindBufferMemory(c.Device, buf, mem, 0); ret != vk.Success {
		vk.FreeMemory(c.Device, mem, nil)
		vk.DestroyBuffer(c.Device, buf, nil)
		return Buffer{}, fmt.Errorf("bind buffer memory: %w", vk.Error(ret))
	}
	return Buffer{Buf: buf, Mem: mem, Size: size}, nil
}

// DestroyBuffer releases a buffer and its memory.
func (c *Context) DestroyBuffer(b Buffer) {
	if b.Buf != vk.NullBuffer {
		vk.DestroyBuffer(c.Device, b.Buf, nil)
	}
	if b.Mem != vk.NullDeviceMemory {
		vk.FreeMemory(c.Device, b.Mem, nil)
	}
}

// Fractions of the device-local heap tried for the big face buffer, largest
// first. Drivers over-report or fragment, so back off until one sticks.
var deviceBufferFractions = []int{70, 55, 45, 30, 20, 15}

// AllocateFaceBuffer allocates the device-local destination buffer for face
// words as a fraction of the largest device-local heap.
func (c *Context) AllocateFaceBuffer() (Buffer, error) {
	heap := c.deviceLocalHeapBytes()
	if heap == 0 {
		return Buffer{}, fmt.Errorf("no device-local heap")
	}
	usage := vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit | vk.BufferUsageStorageBufferBit)
	var lastErr error
	for _, pct := range deviceBufferFractions {
		size := heap / 100 * pct
		// Word-align; partial words are useless to the pipeline.
		size &^= 3
		b, err := c.createBuffer(size, usage, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
		if err == nil {
			log.Printf("vkstage: face buffer %d MiB (%d%% of %d MiB heap)", size>>20, pct, heap>>20)
			return b, nil
		}
		lastErr = err
	}
	return Buffer{}, fmt.Errorf("face buffer allocation failed at every size: %w", lastErr)
}

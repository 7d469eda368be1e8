package vkstage

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/kbjakex/voxels03/internal/facecodec"
)

// StagingBytes is the host-visible staging window. Uploads larger than one
// window split into multiple flushes.
const StagingBytes = 16 << 20

// ErrTooLarge reports a single staged write that exceeds the whole window.
var ErrTooLarge = errors.New("staged write larger than the staging buffer")

type copyOp struct {
	src, dst             vk.Buffer
	srcOffset, dstOffset int
	size                 int
}

// Uploader batches buffer copies through a persistent staging window. Writes
// stage into host-visible memory, Flush submits one command buffer covering
// every pending copy, and a fence tells when the batch landed so the window
// can recycle. One batch is in flight at a time.
//
// Copies within a batch carry no barriers between them: the ranges read and
// written by one batch must be disjoint, which holds for diff application
// because copy spans read the old region and all writes land in the new one.
type Uploader struct {
	ctx     *Context
	staging Buffer
	mapped  []byte
	ring    ring
	pending []copyOp

	pool  vk.CommandPool
	cmd   vk.CommandBuffer
	fence vk.Fence

	inFlight bool

	// Totals since creation, for the bench report.
	FlushedBatches int
	FlushedBytes   int
}

func NewUploader(ctx *Context) (*Uploader, error) {
	staging, err := ctx.createBuffer(StagingBytes,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, fmt.Errorf("staging buffer: %w", err)
	}

	u := &Uploader{
		ctx:     ctx,
		staging: staging,
		ring:    ring{size: StagingBytes},
	}

	var data unsafe.Pointer
	if ret := vk.MapMemory(ctx.Device, staging.Mem, 0, vk.DeviceSize(StagingBytes), 0, &data); ret != vk.Success {
		u.Destroy()
		return nil, fmt.Errorf("map staging: %w", vk.Error(ret))
	}
	u.mapped = unsafe.Slice((*byte)(data), StagingBytes)

	if ret := vk.CreateCommandPool(ctx.Device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit | vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: ctx.QueueFamily,
	}, nil, &u.pool); ret != vk.Success {
		u.Destroy()
		return nil, fmt.Errorf("command pool: %w", vk.Error(ret))
	}

	cmds := make([]vk.CommandBuffer, 1)
	if ret := vk.AllocateCommandBuffers(ctx.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        u.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmds); ret != vk.Success {
		u.Destroy()
		return nil, fmt.Errorf("command buffer: %w", vk.Error(ret))
	}
	u.cmd = cmds[0]

	if ret := vk.CreateFence(ctx.Device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &u.fence); ret != vk.Success {
		u.Destroy()
		return nil, fmt.Errorf("fence: %w", vk.Error(ret))
	}
	return u, nil
}

// StageToBuffer copies data into the staging window and queues a transfer
// into dst at dstOffset. When the window is full the pending batch flushes
// and completes first, so a call may block on the fence.
func (u *Uploader) StageToBuffer(dst vk.Buffer, dstOffset int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if len(data) > StagingBytes {
		return ErrTooLarge
	}
	if u.inFlight {
		if err := u.Wait(); err != nil {
			return err
		}
	}
	off, ok := u.ring.reserve(len(data))
	if !ok {
		if err := u.Flush(); err != nil {
			return err
		}
		if err := u.Wait(); err != nil {
			return err
		}
		off, ok = u.ring.reserve(len(data))
		if !ok {
			return ErrTooLarge
		}
	}
	copy(u.mapped[off:], data)
	u.pending = append(u.pending, copyOp{
		src:       u.staging.Buf,
		dst:       dst,
		srcOffset: off,
		dstOffset: dstOffset,
		size:      len(data),
	})
	return nil
}

// StageFaceWords stages a face word run at a word-indexed destination offset.
func (u *Uploader) StageFaceWords(dst vk.Buffer, dstWord int, words []facecodec.Word) error {
	if len(words) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), 4*len(words))
	return u.StageToBuffer(dst, 4*dstWord, b)
}

// CopyDevice queues a device-side copy. Unchanged diff spans move this way,
// never crossing host memory.
func (u *Uploader) CopyDevice(src, dst vk.Buffer, srcOffset, dstOffset, size int) {
	if size <= 0 {
		return
	}
	u.pending = append(u.pending, copyOp{src: src, dst: dst, srcOffset: srcOffset, dstOffset: dstOffset, size: size})
}

// Flush submits every pending copy as one batch and returns without waiting.
// Call Wait (or let the next Stage do it) before touching the destinations.
func (u *Uploader) Flush() error {
	if len(u.pending) == 0 {
		return nil
	}
	if u.inFlight {
		if err := u.Wait(); err != nil {
			return err
		}
	}

	if ret := vk.ResetCommandBuffer(u.cmd, 0); ret != vk.Success {
		return fmt.Errorf("reset command buffer: %w", vk.Error(ret))
	}
	if ret := vk.BeginCommandBuffer(u.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}); ret != vk.Success {
		return fmt.Errorf("begin command buffer: %w", vk.Error(ret))
	}
	batchBytes := 0
	for _, op := range u.pending {
		vk.CmdCopyBuffer(u.cmd, op.src, op.dst, 1, []vk.BufferCopy{{
			SrcOffset: vk.DeviceSize(op.srcOffset),
			DstOffset: vk.DeviceSize(op.dstOffset),
			Size:      vk.DeviceSize(op.size),
		}})
		batchBytes += op.size
	}
	if ret := vk.EndCommandBuffer(u.cmd); ret != vk.Success {
		return fmt.Errorf("end command buffer: %w", vk.Error(ret))
	}

	if ret := vk.QueueSubmit(u.ctx.Queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{u.cmd},
	}}, u.fence); ret != vk.Success {
		return fmt.Errorf("queue submit: %w", vk.Error(ret))
	}

	u.pending = u.pending[:0]
	u.inFlight = true
	u.FlushedBatches++
	u.FlushedBytes += batchBytes
	return nil
}

// Wait blocks until the in-flight batch completes, then recycles the staging
// window.
func (u *Uploader) Wait() error {
	if !u.inFlight {
		return nil
	}
	if ret := vk.WaitForFences(u.ctx.Device, 1, []vk.Fence{u.fence}, vk.True, ^uint64(0)); ret != vk.Success {
		return fmt.Errorf("wait for copy fence: %w", vk.Error(ret))
	}
	if ret := vk.ResetFences(u.ctx.Device, 1, []vk.Fence{u.fence}); ret != vk.Success {
		return fmt.Errorf("reset copy fence: %w", vk.Error(ret))
	}
	u.inFlight = false
	u.ring.reset()
	return nil
}

// Idle reports whether a new batch can start without blocking: nothing in
// flight, or the in-flight fence already signaled.
func (u *Uploader) Idle() bool {
	if !u.inFlight {
		return true
	}
	return vk.GetFenceStatus(u.ctx.Device, u.fence) == vk.Success
}

// PendingOps returns the number of queued copies not yet flushed.
func (u *Uploader) PendingOps() int {
	return len(u.pending)
}

// Destroy waits out any in-flight batch and releases everything.
func (u *Uploader) Destroy() {
	if u.inFlight {
		_ = u.Wait()
	}
	dev := u.ctx.Device
	if u.fence != vk.NullFence {
		vk.DestroyFence(dev, u.fence, nil)
		u.fence = vk.NullFence
	}
	if u.pool != vk.NullCommandPool {
		vk.DestroyCommandPool(dev, u.pool, nil)
		u.pool = vk.NullCommandPool
	}
	if u.mapped != nil {
		vk.UnmapMemory(dev, u.staging.Mem)
		u.mapped = nil
	}
	u.ctx.DestroyBuffer(u.staging)
	u.staging = Buffer{}
}

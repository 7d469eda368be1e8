package vkstage

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"
)

// Context owns a headless Vulkan instance and one transfer-capable queue.
// There is no surface or swapchain; this side of the pipeline only moves
// face words into device memory.
type Context struct {
	Instance    vk.Instance
	Physical    vk.PhysicalDevice
	Device      vk.Device
	Queue       vk.Queue
	QueueFamily uint32

	memProps vk.PhysicalDeviceMemoryProperties
}

var ErrNoDevice = errors.New("no vulkan device with a transfer queue")

// NewContext brings up instance, device and queue. appName shows up in
// validation and tooling layers.
func NewContext(appName string) (*Context, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("vulkan loader: %w", err)
	}
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("vulkan init: %w", err)
	}

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   appName + "\x00",
		ApplicationVersion: vk.MakeVersion(0, 1, 0),
		PEngineName:        "voxels03\x00",
		EngineVersion:      vk.MakeVersion(0, 1, 0),
		ApiVersion:         vk.ApiVersion10,
	}
	var instance vk.Instance
	if ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}, nil, &instance); ret != vk.Success {
		return nil, fmt.Errorf("create instance: %w", vk.Error(ret))
	}
	vk.InitInstance(instance)

	ctx := &Context{Instance: instance}
	if err := ctx.pickDevice(); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	if err := ctx.createDevice(); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}

	vk.GetPhysicalDeviceMemoryProperties(ctx.Physical, &ctx.memProps)
	ctx.memProps.Deref()
	for i := uint32(0); i < ctx.memProps.MemoryTypeCount; i++ {
		ctx.memProps.MemoryTypes[i].Deref()
	}
	for i := uint32(0); i < ctx.memProps.MemoryHeapCount; i++ {
		ctx.memProps.MemoryHeaps[i].Deref()
	}
	return ctx, nil
}

func (c *Context) pickDevice() error {
	var count uint32
	if ret := vk.EnumeratePhysicalDevices(c.Instance, &count, nil); ret != vk.Success {
		return fmt.Errorf("enumerate devices: %w", vk.Error(ret))
	}
	if count == 0 {
		return ErrNoDevice
	}
	devices := make([]vk.PhysicalDevice, count)
	if ret := vk.EnumeratePhysicalDevices(c.Instance, &count, devices); ret != vk.Success {
		return fmt.Errorf("enumerate devices: %w", vk.Error(ret))
	}

	for _, dev := range devices {
		family, ok := transferFamily(dev)
		if !ok {
			continue
		}
		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(dev, &props)
		props.Deref()
		log.Printf("vkstage: using %s (queue family %d)", cstr(props.DeviceName[:]), family)

		c.Physical = dev
		c.QueueFamily = family
		return nil
	}
	return ErrNoDevice
}

// transferFamily returns the first queue family that can run copy commands.
// Graphics and compute queues implicitly support transfer.
func transferFamily(dev vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, nil)
	if count == 0 {
		return 0, false
	}
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(dev, &count, families)
	const caps = vk.QueueFlags(vk.QueueTransferBit | vk.QueueGraphicsBit | vk.QueueComputeBit)
	for i := range families {
		families[i].Deref()
		if families[i].QueueCount > 0 && families[i].QueueFlags&caps != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (c *Context) createDevice() error {
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: c.QueueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	var device vk.Device
	if ret := vk.CreateDevice(c.Physical, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}, nil, &device); ret != vk.Success {
		return fmt.Errorf("create device: %w", vk.Error(ret))
	}
	c.Device = device

	var queue vk.Queue
	vk.GetDeviceQueue(c.Device, c.QueueFamily, 0, &queue)
	c.Queue = queue
	return nil
}

// findMemoryType picks a memory type index out of typeBits with the wanted
// property flags.
func (c *Context) findMemoryType(typeBits uint32, want vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < c.memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		if c.memProps.MemoryTypes[i].PropertyFlags&want == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type for bits %#x with flags %#x", typeBits, want)
}

// deviceLocalHeapBytes returns the size of the largest device-local heap.
func (c *Context) deviceLocalHeapBytes() int {
	var best vk.DeviceSize
	for i := uint32(0); i < c.memProps.MemoryHeapCount; i++ {
		h := c.memProps.MemoryHeaps[i]
		if h.Flags&vk.MemoryHeapFlags(vk.MemoryHeapDeviceLocalBit) != 0 && h.Size > best {
			best = h.Size
		}
	}
	return int(best)
}

// Destroy tears the context down. All buffers and uploaders created from it
// must already be destroyed.
func (c *Context) Destroy() {
	if c.Device != nil {
		vk.DeviceWaitIdle(c.Device)
		vk.DestroyDevice(c.Device, nil)
		c.Device = nil
	}
	if c.Instance != nil {
		vk.DestroyInstance(c.Instance, nil)
		c.Instance = nil
	}
}

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

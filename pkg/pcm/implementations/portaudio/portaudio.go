package portaudio

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

type Source struct {
	Device *portaudio.DeviceInfo
	Stream *portaudio.Stream
	Buffer []int16
	Config pcm.Format
}

var _ pcm.Source = (*Source)(nil)

// ListDevices initializes PortAudio just for the enumeration.
func ListDevices(ctx context.Context) (_ []pcm.DeviceDescriptor, _err error) {
	logger.Tracef(ctx, "ListDevices")
	defer func() { logger.Tracef(ctx, "/ListDevices: %v", _err) }()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("unable to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("unable to list the devices: %w", err)
	}
	return descriptors(devices), nil
}

func descriptors(devices []*portaudio.DeviceInfo) []pcm.DeviceDescriptor {
	result := make([]pcm.DeviceDescriptor, 0, len(devices))
	for idx, d := range devices {
		result = append(result, pcm.DeviceDescriptor{
			Index:             idx,
			Name:              d.Name,
			MaxInputChannels:  d.MaxInputChannels,
			DefaultSampleRate: d.DefaultSampleRate,
		})
	}
	return result
}

// New opens a mono input stream on the device matching deviceName (see
// pcm.SelectDevice).
func New(
	ctx context.Context,
	deviceName string,
	format pcm.Format,
) (_ *Source, _err error) {
	logger.Tracef(ctx, "New(ctx, '%s', %#+v)", deviceName, format)
	defer func() { logger.Tracef(ctx, "/New(ctx, '%s', %#+v): %v", deviceName, format, _err) }()

	if err := portaudio.Initialize(); err != nil {
		return nil, activation.ErrDeviceFailure{Err: fmt.Errorf("unable to initialize PortAudio: %w", err)}
	}

	src, err := newSource(ctx, deviceName, format)
	if err != nil {
		portaudio.Terminate()
		return nil, activation.ErrDeviceFailure{Err: err}
	}
	return src, nil
}

func newSource(
	ctx context.Context,
	deviceName string,
	format pcm.Format,
) (*Source, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("unable to list the devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no audio devices found")
	}

	var device *portaudio.DeviceInfo
	if deviceName == "" {
		device, err = portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("unable to get the default input device: %w", err)
		}
	} else {
		device = devices[pcm.SelectDevice(descriptors(devices), deviceName)]
	}
	logger.Infof(ctx, "using the input device '%s'", device.Name)

	src := &Source{
		Device: device,
		Buffer: make([]int16, format.FrameLength),
		Config: format,
	}
	src.Stream, err = portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(format.SampleRate),
		FramesPerBuffer: format.FrameLength,
	}, src.Buffer)
	if err != nil {
		return nil, fmt.Errorf("unable to open a stream on '%s': %w", device.Name, err)
	}
	if err := src.Stream.Start(); err != nil {
		src.Stream.Close()
		return nil, fmt.Errorf("unable to start the stream on '%s': %w", device.Name, err)
	}
	return src, nil
}

func (s *Source) Format() pcm.Format {
	return s.Config
}

func (s *Source) ReadFrame(ctx context.Context) (pcm.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Stream.Read(); err != nil {
		if err == portaudio.InputOverflowed {
			logger.Debugf(ctx, "input overflowed on '%s'", s.Device.Name)
		} else {
			return nil, activation.ErrDeviceFailure{Err: err}
		}
	}
	return pcm.Frame(s.Buffer).Clone(), nil
}

func (s *Source) Close() error {
	var result *multierror.Error
	if err := s.Stream.Stop(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to stop the stream: %w", err))
	}
	if err := s.Stream.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the stream: %w", err))
	}
	if err := portaudio.Terminate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to terminate PortAudio: %w", err))
	}
	return result.ErrorOrNil()
}

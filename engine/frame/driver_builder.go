package frame

// FrameDriverBuilderOption is a functional option for configuring a FrameDriver.
// Use the With* functions to create options that are applied directly to the driver instance.
type FrameDriverBuilderOption func(*frameDriver)

// WithWheelStep sets the factor scaling raw scroll deltas into the wheel
// global. Values <= 0 are treated as the default (0.1).
//
// Parameters:
//   - step: the wheel accumulation step
//
// Returns:
//   - FrameDriverBuilderOption: option function to apply
func WithWheelStep(step float32) FrameDriverBuilderOption {
	return func(d *frameDriver) {
		if step <= 0 {
			step = 0.1
		}
		d.wheelStep = step
	}
}

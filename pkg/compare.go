package funique

// matchStage names the discriminator that decided a comparison
type matchStage string

const (
	stageHardlink matchStage = "hardlink"
	stageSize     matchStage = "size"
	stageLeading  matchStage = "leading checksum"
	stageChecksum matchStage = "checksum"
)

// Comparator decides whether two entries have identical content, using the
// cheapest discriminator that can settle the question
type Comparator struct {
	Algorithm        *HashAlgorithm
	LeadingThreshold int64 // physical files larger than this get a leading checksum check
	LeadingSize      int   // bytes covered by the leading checksum
	BufferSize       int   // read buffer for full checksums

	shutdownChan <-chan struct{}
}

// NewComparator creates a comparator with the default thresholds
func NewComparator(algorithm *HashAlgorithm) *Comparator {
	return &Comparator{
		Algorithm:        algorithm,
		LeadingThreshold: DefaultLeadingThreshold,
		LeadingSize:      DefaultLeadingSize,
		BufferSize:       DefaultHashBuffer,
	}
}

// WithShutdown makes full checksum reads stop when shutdownChan is closed
func (c *Comparator) WithShutdown(shutdownChan <-chan struct{}) *Comparator {
	c.shutdownChan = shutdownChan
	return c
}

// IsMatch reports whether left and right have the same content. Physical
// file pairs go through hardlink identity, size and (for large files) the
// leading checksum before the full checksum. A checksum record only takes
// part in the full checksum stage. Computed checksums are cached on the
// entries.
func (c *Comparator) IsMatch(left, right *Entry) (bool, error) {
	match, _, err := c.compare(left, right)
	return match, err
}

func (c *Comparator) compare(left, right *Entry) (bool, matchStage, error) {
	if left.IsPhysical() && right.IsPhysical() {
		same, err := left.IsHardlinkOf(right)
		if err != nil {
			return false, stageHardlink, err
		}
		if same {
			return true, stageHardlink, nil
		}

		leftSize, err := left.Size()
		if err != nil {
			return false, stageSize, err
		}
		rightSize, err := right.Size()
		if err != nil {
			return false, stageSize, err
		}
		if leftSize != rightSize {
			return false, stageSize, nil
		}

		if leftSize > c.LeadingThreshold {
			leftLeading, err := left.LeadingSum(c.LeadingSize)
			if err != nil {
				return false, stageLeading, err
			}
			rightLeading, err := right.LeadingSum(c.LeadingSize)
			if err != nil {
				return false, stageLeading, err
			}
			if leftLeading != rightLeading {
				return false, stageLeading, nil
			}
		}
	}

	leftSum, err := left.SumInterruptible(c.Algorithm, c.BufferSize, c.shutdownChan)
	if err != nil {
		return false, stageChecksum, err
	}
	rightSum, err := right.SumInterruptible(c.Algorithm, c.BufferSize, c.shutdownChan)
	if err != nil {
		return false, stageChecksum, err
	}
	return leftSum == rightSum, stageChecksum, nil
}

package s3

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/rdbms/shared"
)

// AwsS3Bucket is an output location for generated scripts.
type AwsS3Bucket struct {
	Name   string `errorTxt:"bucket name" mandatory:"yes"`
	Prefix string `errorTxt:"bucket prefix"`
	Region string `errorTxt:"bucket region" mandatory:"yes"`
}

func (d *AwsS3Bucket) Parse() error {
	b, err := ParseDSN(fmt.Sprintf("s3://%s/%s", d.Name, d.Prefix), d.Region)
	if err != nil {
		return err
	}
	*d = b
	return nil
}

func (d *AwsS3Bucket) GetScheme() (string, error) {
	return constants.ConnectionTypeS3, nil
}

func (d AwsS3Bucket) GetMap(m map[string]string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m["name"] = d.Name
	m["prefix"] = d.Prefix
	m["region"] = d.Region
	return m
}

func (d AwsS3Bucket) String() string {
	if d.Prefix == "" {
		return fmt.Sprintf("s3://%s (%s)", d.Name, d.Region)
	}
	return fmt.Sprintf("s3://%s/%s (%s)", d.Name, d.Prefix, d.Region)
}

// NewAwsBucket reads a bucket saved as an s3 connection.
func NewAwsBucket(c *shared.ConnectionDetails) *AwsS3Bucket {
	return &AwsS3Bucket{
		Name:   c.Data["name"],
		Prefix: c.Data["prefix"],
		Region: c.Data["region"],
	}
}

// IsS3URL reports whether s looks like s3://bucket[/prefix].
func IsS3URL(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "s3://")
}

// ParseDSN expects bucketPrefix to be of the form [s3://]<bucket>/<prefix>
// It returns an AwsS3Bucket populated with the components of bucketPrefix and the supplied region.
// The region is mandatory.
func ParseDSN(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	expectedScheme := "s3"
	if !strings.Contains(bucketPrefix, "://") {
		bucketPrefix = expectedScheme + "://" + bucketPrefix
	}
	s3url, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, errors.Wrap(err, "error parsing S3 URL")
	}
	if s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	if region == "" {
		return retval, fmt.Errorf("value expected for bucket region")
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("DSN failed to parse bucket name")
	}
	retval.Prefix = strings.Trim(s3url.Path, "/")
	retval.Region = region
	return
}

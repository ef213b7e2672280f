package corpus

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/jsphweid/markovmidi/logger"
	"github.com/jsphweid/markovmidi/midi"
	"github.com/jsphweid/markovmidi/model"
	"github.com/pkg/errors"
)

func IsS3URL(input string) bool {
	return strings.HasPrefix(input, "s3://")
}

func ParseS3URL(input string) (bucket string, prefix string, err error) {
	u, err := url.Parse(input)
	if err != nil {
		return "", "", errors.Wrapf(err, "invalid s3 url %q", input)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", errors.Errorf("invalid s3 url %q, expected s3://bucket/prefix", input)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

type S3Loader struct {
	Client s3iface.S3API
}

// NewS3Loader uses the standard AWS credential chain and shared config.
func NewS3Loader() (*S3Loader, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create an AWS session")
	}
	return &S3Loader{Client: s3.New(sess)}, nil
}

func (l *S3Loader) listKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	err := l.Client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if isMidi(key) {
				keys = append(keys, key)
			}
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not list s3://%v/%v", bucket, prefix)
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *S3Loader) loadObject(ctx context.Context, bucket, key string) (model.Source, error) {
	out, err := l.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return model.Source{}, errors.Wrap(err, "could not fetch object")
	}
	defer out.Body.Close()

	parsed, err := midi.ReadMidi(out.Body)
	if err != nil {
		return model.Source{}, err
	}
	return midi.ToSource("s3://"+bucket+"/"+key, parsed), nil
}

// Load fetches and parses MIDI objects under the URL prefix in key order.
// Objects that cannot be fetched or parsed are skipped.
func (l *S3Loader) Load(ctx context.Context, input string, maxNum int) ([]model.Source, error) {
	bucket, prefix, err := ParseS3URL(input)
	if err != nil {
		return nil, err
	}
	keys, err := l.listKeys(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	if maxNum > 0 && len(keys) > maxNum {
		keys = keys[:maxNum]
	}

	var res []model.Source
	for _, key := range keys {
		src, err := l.loadObject(ctx, bucket, key)
		if err != nil {
			logger.Warn("skipping midi object", logger.Fields{"key": key, "reason": err.Error()})
			continue
		}
		res = append(res, src)
		logger.Info("loaded", logger.Fields{"key": key})
	}
	return res, nil
}

package aws

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/heuermh/eggo/internal/metrics"
)

// EC2API is the part of the EC2 client used by RealClient.
type EC2API interface {
	ec2.DescribeInstancesAPIClient
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
}

// CloudFormationAPI is the part of the CloudFormation client used by RealClient.
type CloudFormationAPI interface {
	cloudformation.DescribeStacksAPIClient
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

// STSAPI is the part of the STS client used by RealClient.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// RealClient implements Client using the AWS SDK.
type RealClient struct {
	ec2 EC2API
	cfn CloudFormationAPI
	sts STSAPI

	waiterMinDelay time.Duration
	waiterMaxDelay time.Duration
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithAPIs replaces the SDK clients (useful for testing).
func WithAPIs(e EC2API, c CloudFormationAPI, s STSAPI) ClientOption {
	return func(rc *RealClient) {
		rc.ec2, rc.cfn, rc.sts = e, c, s
	}
}

// WithWaiterDelay bounds the polling interval of the state waiters.
func WithWaiterDelay(minDelay, maxDelay time.Duration) ClientOption {
	return func(rc *RealClient) {
		rc.waiterMinDelay, rc.waiterMaxDelay = minDelay, maxDelay
	}
}

// NewRealClient creates a client for region. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewRealClient(ctx context.Context, region, accessKey, secretKey string, opts ...ClientOption) (*RealClient, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	c := &RealClient{
		ec2:            ec2.NewFromConfig(cfg),
		cfn:            cloudformation.NewFromConfig(cfg),
		sts:            sts.NewFromConfig(cfg),
		waiterMinDelay: 5 * time.Second,
		waiterMaxDelay: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newClient builds a RealClient around injected APIs without loading AWS config.
func newClient(opts ...ClientOption) *RealClient {
	c := &RealClient{waiterMinDelay: 5 * time.Second, waiterMaxDelay: 30 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindInstances implements InstanceManager.
func (c *RealClient) FindInstances(ctx context.Context, filter map[string]string) ([]*Instance, error) {
	input := &ec2.DescribeInstancesInput{Filters: tagFilters(filter)}

	var result []*Instance
	pager := ec2.NewDescribeInstancesPaginator(c.ec2, input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		metrics.RecordAWSCall("DescribeInstances", err)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, r := range page.Reservations {
			for i := range r.Instances {
				result = append(result, fromEC2(&r.Instances[i]))
			}
		}
	}
	return result, nil
}

func tagFilters(filter map[string]string) []ec2types.Filter {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make([]ec2types.Filter, 0, len(keys)+1)
	for _, k := range keys {
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("tag:" + k),
			Values: []string{filter[k]},
		})
	}
	return append(filters, ec2types.Filter{
		Name:   aws.String("instance-state-name"),
		Values: LiveStates,
	})
}

func fromEC2(in *ec2types.Instance) *Instance {
	out := &Instance{
		ID:        aws.ToString(in.InstanceId),
		PublicIP:  aws.ToString(in.PublicIpAddress),
		PrivateIP: aws.ToString(in.PrivateIpAddress),
		Tags:      make(map[string]string, len(in.Tags)),
	}
	if in.State != nil {
		out.State = string(in.State.Name)
	}
	for _, t := range in.Tags {
		out.Tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return out
}

// LaunchInstance implements InstanceManager.
func (c *RealClient) LaunchInstance(ctx context.Context, opts LaunchOpts) (*Instance, error) {
	ec2Tags := make([]ec2types.Tag, 0, len(opts.Tags))
	for _, k := range sortedKeys(opts.Tags) {
		ec2Tags = append(ec2Tags, ec2types.Tag{Key: aws.String(k), Value: aws.String(opts.Tags[k])})
	}

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(opts.AMI),
		InstanceType: ec2types.InstanceType(opts.InstanceType),
		KeyName:      aws.String(opts.KeyName),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		NetworkInterfaces: []ec2types.InstanceNetworkInterfaceSpecification{
			{
				DeviceIndex:              aws.Int32(0),
				SubnetId:                 aws.String(opts.SubnetID),
				Groups:                   []string{opts.SecurityGroupID},
				AssociatePublicIpAddress: aws.Bool(true),
				DeleteOnTermination:      aws.Bool(true),
			},
		},
		TagSpecifications: []ec2types.TagSpecification{
			{
				ResourceType: ec2types.ResourceTypeInstance,
				Tags:         ec2Tags,
			},
		},
	}
	if opts.ClientToken != "" {
		input.ClientToken = aws.String(opts.ClientToken)
	}

	out, err := c.ec2.RunInstances(ctx, input)
	metrics.RecordAWSCall("RunInstances", err)
	if err != nil {
		return nil, fmt.Errorf("failed to run instance: %w", err)
	}
	if len(out.Instances) == 0 {
		return nil, fmt.Errorf("run instances returned no instance")
	}
	return fromEC2(&out.Instances[0]), nil
}

// WaitInstanceRunning implements InstanceManager.
func (c *RealClient) WaitInstanceRunning(ctx context.Context, id string, timeout time.Duration) (*Instance, error) {
	waiter := ec2.NewInstanceRunningWaiter(c.ec2, func(o *ec2.InstanceRunningWaiterOptions) {
		o.MinDelay, o.MaxDelay = c.waiterMinDelay, c.waiterMaxDelay
	})
	out, err := waiter.WaitForOutput(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}}, timeout)
	if err != nil {
		return nil, fmt.Errorf("instance %s did not reach running: %w", id, err)
	}
	for _, r := range out.Reservations {
		for i := range r.Instances {
			if aws.ToString(r.Instances[i].InstanceId) == id {
				return fromEC2(&r.Instances[i]), nil
			}
		}
	}
	return nil, fmt.Errorf("instance %s missing from describe output", id)
}

// TerminateInstance implements InstanceManager. Unknown IDs are not an error.
func (c *RealClient) TerminateInstance(ctx context.Context, id string) error {
	_, err := c.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{id}})
	metrics.RecordAWSCall("TerminateInstances", err)
	if err != nil {
		if IsInstanceNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to terminate instance %s: %w", id, err)
	}
	return nil
}

// WaitInstanceTerminated implements InstanceManager.
func (c *RealClient) WaitInstanceTerminated(ctx context.Context, id string, timeout time.Duration) error {
	waiter := ec2.NewInstanceTerminatedWaiter(c.ec2, func(o *ec2.InstanceTerminatedWaiterOptions) {
		o.MinDelay, o.MaxDelay = c.waiterMinDelay, c.waiterMaxDelay
	})
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{InstanceIds: []string{id}}, timeout); err != nil {
		return fmt.Errorf("instance %s did not terminate: %w", id, err)
	}
	return nil
}

// GetStack implements StackManager.
func (c *RealClient) GetStack(ctx context.Context, name string) (*Stack, error) {
	out, err := c.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)})
	metrics.RecordAWSCall("DescribeStacks", err)
	if err != nil {
		if IsStackNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe stack %s: %w", name, err)
	}
	if len(out.Stacks) == 0 {
		return nil, nil
	}
	return fromCFN(&out.Stacks[0]), nil
}

func fromCFN(s *cfntypes.Stack) *Stack {
	out := &Stack{
		Name:    aws.ToString(s.StackName),
		ID:      aws.ToString(s.StackId),
		Status:  string(s.StackStatus),
		Outputs: make(map[string]string, len(s.Outputs)),
	}
	for _, o := range s.Outputs {
		out.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return out
}

// CreateStack implements StackManager.
func (c *RealClient) CreateStack(ctx context.Context, opts StackCreateOpts) (string, error) {
	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(opts.Name),
		TemplateBody: aws.String(opts.TemplateBody),
		OnFailure:    cfntypes.OnFailureDelete,
	}
	for _, k := range sortedKeys(opts.Parameters) {
		input.Parameters = append(input.Parameters, cfntypes.Parameter{
			ParameterKey:   aws.String(k),
			ParameterValue: aws.String(opts.Parameters[k]),
		})
	}
	for _, k := range sortedKeys(opts.Tags) {
		input.Tags = append(input.Tags, cfntypes.Tag{Key: aws.String(k), Value: aws.String(opts.Tags[k])})
	}
	if opts.ClientToken != "" {
		input.ClientRequestToken = aws.String(opts.ClientToken)
	}

	out, err := c.cfn.CreateStack(ctx, input)
	metrics.RecordAWSCall("CreateStack", err)
	if err != nil {
		return "", fmt.Errorf("failed to create stack %s: %w", opts.Name, err)
	}
	return aws.ToString(out.StackId), nil
}

// WaitStackCreated implements StackManager.
func (c *RealClient) WaitStackCreated(ctx context.Context, name string, timeout time.Duration) (*Stack, error) {
	waiter := cloudformation.NewStackCreateCompleteWaiter(c.cfn, func(o *cloudformation.StackCreateCompleteWaiterOptions) {
		o.MinDelay, o.MaxDelay = c.waiterMinDelay, c.waiterMaxDelay
	})
	out, err := waiter.WaitForOutput(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)}, timeout)
	if err != nil {
		if s, gerr := c.GetStack(ctx, name); gerr == nil && s != nil {
			return nil, fmt.Errorf("stack %s did not reach CREATE_COMPLETE (status %s): %w", name, s.Status, err)
		}
		return nil, fmt.Errorf("stack %s did not reach CREATE_COMPLETE: %w", name, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s missing from describe output", name)
	}
	return fromCFN(&out.Stacks[0]), nil
}

// DeleteStack implements StackManager.
func (c *RealClient) DeleteStack(ctx context.Context, name string) error {
	_, err := c.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{StackName: aws.String(name)})
	metrics.RecordAWSCall("DeleteStack", err)
	if err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", name, err)
	}
	return nil
}

// WaitStackDeleted implements StackManager.
func (c *RealClient) WaitStackDeleted(ctx context.Context, name string, timeout time.Duration) error {
	waiter := cloudformation.NewStackDeleteCompleteWaiter(c.cfn, func(o *cloudformation.StackDeleteCompleteWaiterOptions) {
		o.MinDelay, o.MaxDelay = c.waiterMinDelay, c.waiterMaxDelay
	})
	if err := waiter.Wait(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)}, timeout); err != nil {
		return fmt.Errorf("stack %s was not deleted: %w", name, err)
	}
	return nil
}

// CallerIdentity implements IdentityManager.
func (c *RealClient) CallerIdentity(ctx context.Context) (*Identity, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	metrics.RecordAWSCall("GetCallerIdentity", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get caller identity: %w", err)
	}
	return &Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

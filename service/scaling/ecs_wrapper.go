package scaling

import (
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/google/uuid"
	config "github.com/viralos-core/v2/configuration"
)

var ecs_svc = ecs.New(config.GetAwsSession())

func scaleTask(clusterName string, desiredRunningTasks int, taskDefinition string) error {
	maxTasks := config.GetEnvConfigs().RenderFarmMaxTasks
	result, err := ecs_svc.ListTasks(&ecs.ListTasksInput{
		Cluster:       &clusterName,
		DesiredStatus: aws.String(ecs.DesiredStatusRunning),
	})

	if err != nil {
		return err
	}
	runningTasks := len(result.TaskArns)
	insufficientTasks := runningTasks < desiredRunningTasks
	withinTaskLimit := desiredRunningTasks+runningTasks < maxTasks
	desiredTasksDelta := int64(desiredRunningTasks) - int64(runningTasks)
	if desiredTasksDelta < 0 { // indicates more tasks running than desired; scale to 0.
		desiredTasksDelta = 0
	}

	if insufficientTasks && withinTaskLimit {
		return runTasks(&clusterName, &desiredTasksDelta, &taskDefinition)
	}
	log.Printf("unable to scale, withinTaskLimit %t insufficientTasks %t", withinTaskLimit, insufficientTasks)
	return nil
}

func runTasks(clusterName *string, desiredTasks *int64, taskDefinition *string) error {
	referenceId := uuid.New().String()
	startedBy := "EcsScaleDaemonProcess"
	subnets := []*string{}
	for _, s := range config.GetEnvConfigs().RenderFarmSubnets {
		subnets = append(subnets, aws.String(s))
	}
	_, err := ecs_svc.RunTask(&ecs.RunTaskInput{
		LaunchType:     aws.String(ecs.LaunchTypeFargate), // TODO: Update this for dedicated EC2 launchType.
		Cluster:        clusterName,
		Count:          desiredTasks,
		TaskDefinition: taskDefinition,
		ReferenceId:    &referenceId,
		StartedBy:      &startedBy,
		NetworkConfiguration: &ecs.NetworkConfiguration{
			AwsvpcConfiguration: &ecs.AwsVpcConfiguration{
				AssignPublicIp: aws.String(ecs.AssignPublicIpEnabled), // Fargate: pulling private ECR needs public IP.
				Subnets:        subnets,
			},
		},
	})
	return err
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"ppg"
	"syscall"
)

func main() {
	// 1. 解析命令行参数
	port := flag.String("port", "", "Serial port device (default from config)")
	baud := flag.Int("baud", 0, "Baud rate (default 115200)")
	output := flag.String("out", "data.csv", "Output CSV file for the processed waveform")
	replayFile := flag.String("replay", "", "Replay a captured raw stream instead of reading the serial port")
	recordFile := flag.String("record", "", "Capture the raw byte stream to a file for later replay")
	debugFile := flag.String("debug", "", "Record per-sample intermediate values to a debug CSV")
	flag.Parse()

	// 2. 初始化系统
	cfg := ppg.DefaultConfig()
	if *port != "" {
		cfg.Serial.Port = *port
	}
	if *baud > 0 {
		cfg.Serial.BaudRate = *baud
	}

	system := ppg.NewPPGSystem(cfg)
	system.OutputFile = *output
	system.ReplayFile = *replayFile
	system.RecordFile = *recordFile
	system.DebugFile = *debugFile

	// 3. 启动系统
	if err := system.Start(); err != nil {
		log.Fatalf("System start failed: %v", err)
	}

	fmt.Println("Press CTRL+C to terminate...")

	// 4. 等待退出信号或系统自行结束
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- system.Wait()
	}()

	select {
	case <-sigChan:
		fmt.Println("\nShutting down...")
		system.Stop()
		// 收尾时循环也可能带着致命错误退出，不能吞掉
		if err := <-errChan; err != nil {
			log.Printf("Pipeline terminated: %v", err)
			os.Exit(1)
		}
	case err := <-errChan:
		if err != nil {
			log.Printf("Pipeline terminated: %v", err)
			os.Exit(1)
		}
	}
}

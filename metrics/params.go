package metrics

const LevelDBPrefix = "lemostore/db/chaindata/"

var (
	// chain
	ChainModule              = "chain"
	BlockInsert_timerName    = "chain/InsertBlock/insertBlock" // 统计区块插入链中的速率和所用时间的分布情况
	DuplicateBlock_meterName = "chain/InsertBlock/duplicate"   // 重复插入的区块
	OrphanBlock_meterName    = "chain/InsertBlock/orphan"      // 父块未知的区块
	OrphanEvict_meterName    = "chain/orphanPool/evict"        // 孤块池满时被丢弃的区块
	ForkSwitch_meterName     = "chain/ForkManager/switchFork"  // 切换到其他分支的次数
	TipHeight_gaugeName      = "chain/ForkManager/tipHeight"   // 当前最长链高度
	BlockCount_gaugeName     = "chain/InsertBlock/totalBlocks" // 已接收区块总数
	TipDrop_meterName        = "chain/SubscribeTip/drop"       // 订阅者处理太慢而丢弃的事件

	// leveldb
	LevelDBModule           = LevelDBPrefix
	LevelDb_get_timerName   = LevelDBPrefix + "user/gets"
	LevelDb_put_timerName   = LevelDBPrefix + "user/puts"
	LevelDb_miss_meterName  = LevelDBPrefix + "user/misses" // 对数据库进行get操作失败的频率
	LevelDb_read_meterName  = LevelDBPrefix + "user/reads"  // get数据库出来的数据字节大小
	LevelDb_write_meterName = LevelDBPrefix + "user/writes" // put进数据库的数据字节大小

	LevelDb_compTime_meterName  = LevelDBPrefix + "compact/time"   // 数据库压缩所花费的时间
	LevelDb_compRead_meterName  = LevelDBPrefix + "compact/input"  // 数据库压缩时读取的数据量
	LevelDb_compWrite_meterName = LevelDBPrefix + "compact/output" // 数据库压缩时写入的数据量

	// system meter
	SystemModule         = "system"
	System_memory_allocs = "system/memory/allocs" // 申请内存的次数
	System_memory_frees  = "system/memory/frees"  // 释放内存的次数
	System_memory_inuse  = "system/memory/inuse"  // 已申请且仍在使用的字节数
	System_memory_pauses = "system/memory/pauses" // GC总的暂停时间的循环缓冲
)
